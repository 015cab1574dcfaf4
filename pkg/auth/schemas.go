package auth

import "github.com/getmockd/shelfd/pkg/validation"

// RequiredAnswers is the number of security answers a user must supply.
const RequiredAnswers = 3

var credentialsSchema = validation.MustKeySet(
	validation.String("email"),
	validation.String("password"),
)

const answersSchema = `{
	"type": "array",
	"minItems": 3,
	"maxItems": 3,
	"items": {
		"type": "object",
		"properties": {"answer": {"type": "string"}},
		"required": ["answer"],
		"additionalProperties": false
	}
}`

var verifySchema = validation.MustSchema(`{
	"type": "object",
	"properties": {"securityQuestions": ` + answersSchema + `},
	"required": ["securityQuestions"],
	"additionalProperties": false
}`)

var resetSchema = validation.MustSchema(`{
	"type": "object",
	"properties": {
		"newPassword": {"type": "string"},
		"securityQuestions": ` + answersSchema + `
	},
	"required": ["newPassword", "securityQuestions"],
	"additionalProperties": false
}`)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type answer struct {
	Answer string `json:"answer"`
}

type verifyRequest struct {
	SecurityQuestions []answer `json:"securityQuestions"`
}

type resetRequest struct {
	NewPassword       string   `json:"newPassword"`
	SecurityQuestions []answer `json:"securityQuestions"`
}

func answersOf(in []answer) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = a.Answer
	}
	return out
}
