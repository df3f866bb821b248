package util

import (
	"fmt"
	"log"
	"net/http"
)

func RespondInternalServerError(writer http.ResponseWriter, err error) {
	writer.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(writer, "Internal Server Error\n")
	log.Printf("internal error: %+v\n", err)
}

func RespondNotFound(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(writer, "404: Not Found\n")
}

// RedirectBack redirects to the referring page, or the fallback when the
// request carries no Referer header.
func RedirectBack(writer http.ResponseWriter, request *http.Request, fallback string) {
	target := request.Referer()

	if len(target) == 0 {
		target = fallback
	}

	http.Redirect(writer, request, target, http.StatusFound)
}
