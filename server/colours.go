package server

import (
	"fmt"
	"net/http"
)

// ANSI colours for the route table printed at startup in DEV.
const (
	colourGreen   = "\033[32m"
	colourBlue    = "\033[34m"
	colourMagenta = "\033[35m"
	colourCyan    = "\033[36m"
	colourYellow  = "\033[33m"
	colourGray    = "\033[90m"
	colourReset   = "\033[0m"
)

var methodColours = map[string]string{
	http.MethodGet:    colourGreen,
	http.MethodPost:   colourBlue,
	http.MethodPut:    colourCyan,
	http.MethodPatch:  colourMagenta,
	http.MethodDelete: colourYellow,
}

func colourMethod(method string) string {
	colour, ok := methodColours[method]
	if !ok {
		colour = colourGray
	}
	return colour + fmt.Sprintf(" %-7s", method) + colourReset
}
