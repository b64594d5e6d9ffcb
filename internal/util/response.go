package util

type Envelope map[string]any

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Error(code, message string) Envelope {
	return Envelope{"error": ErrorBody{Code: code, Message: message}}
}

func ValidationError(code, message string, fields any) Envelope {
	env := Error(code, message)
	if fields != nil {
		env["validation"] = fields
	}
	return env
}
