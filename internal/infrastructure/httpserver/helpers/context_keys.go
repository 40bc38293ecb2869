package helpers

import (
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyClientID ctxKey = "client_id"
)

func SetClientID(c echo.Context, id string) { c.Set(string(keyClientID), id) }
func GetClientIDRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyClientID))
	id, ok := v.(string)
	return id, ok
}
