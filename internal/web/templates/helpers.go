package templates

//go:generate templ generate

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"
	"github.com/emiliopalmerini/mclass/internal/util"
)

func formatInt(n int64) string {
	return util.FormatNumber(n)
}

func formatSigned(n int64) string {
	if n > 0 {
		return "+" + util.FormatNumber(n)
	}
	return util.FormatNumber(n)
}

func formatPercentValue(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func truncateID(id string) string {
	if len(id) > 24 {
		return id[:24]
	}
	return id
}

func sessionURL(id string) templ.SafeURL {
	return templ.SafeURL("/sessions/" + url.PathEscape(id))
}

func statusTitle(status int) string {
	switch status {
	case 404:
		return "Not found"
	case 400:
		return "Bad request"
	default:
		return "Something went wrong"
	}
}
