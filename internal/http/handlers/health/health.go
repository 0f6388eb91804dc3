package health

import (
	"net/http"
	"passreset/internal/http/handlers/response"
)

func ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	response.RenderMessage(rw, "ok")
}
