// Package dto defines the request and response shapes of the HTTP surface.
package dto

import (
	"encoding/json"

	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

// Response is the uniform envelope of every endpoint. Payload fields are
// spread beside success/code/message on the wire, so a sign-in body reads
// {success, message, token, refreshToken, user}.
type Response struct {
	Success bool
	Code    string
	Message string
	Payload interface{}
	Details map[string]string
}

// MarshalJSON flattens Payload into the envelope object. Envelope keys win
// on collision; a payload that is not a JSON object rides under "data".
func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"success": r.Success,
		"message": r.Message,
	}
	if r.Code != "" {
		out["code"] = r.Code
	}
	if len(r.Details) > 0 {
		out["details"] = r.Details
	}
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			out["data"] = json.RawMessage(raw)
		} else {
			for k, v := range fields {
				if _, taken := out[k]; !taken {
					out[k] = v
				}
			}
		}
	}
	return json.Marshal(out)
}

// OK builds a success envelope.
func OK(message string, payload interface{}) Response {
	return Response{Success: true, Message: message, Payload: payload}
}

// Fail builds a failure envelope from a taxonomy error.
func Fail(err *apperrors.AppError) Response {
	return Response{
		Success: false,
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}
}
