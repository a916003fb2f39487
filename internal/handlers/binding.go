package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

var errEmptyBody = errors.New("el cuerpo de la solicitud está vacío")

// BindNestedOrFlat decodes the JSON body into obj. Clients may wrap the payload
// under key ({"obligation": {...}}) or send it flat; both are accepted. The body
// stays readable for later binders.
func BindNestedOrFlat(c *gin.Context, key string, obj any) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	var envelope map[string]json.RawMessage
	if json.Unmarshal(body, &envelope) == nil {
		if nested, ok := envelope[key]; ok {
			return json.Unmarshal(nested, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
