package resource

import (
	"net/url"
	"strconv"
)

func urlEscape(s string) string { return url.QueryEscape(s) }

func itoa(i int) string { return strconv.Itoa(i) }
