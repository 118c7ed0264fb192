package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func writeHeaders(out *strings.Builder, headers http.Header) {
	for key, values := range headers {
		for _, value := range values {
			fmt.Fprintf(out, "%s: %s\n", key, value)
		}
	}
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err)
	}
	read, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err)
	}
	return string(read)
}

// formatHttpMessage renders one full exchange, headers and bodies of
// both sides, into the dump handed to an InstrumentOutput.
func formatHttpMessage(res *resty.Response) string {
	responseUrl := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		responseUrl = redirected.String()
	}

	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	writeHeaders(&out, res.Request.RawRequest.Header)
	out.WriteString("\n")
	out.WriteString(requestBody(res.Request.RawRequest))
	out.WriteString("\n\n---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), responseUrl)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.WriteString(res.String())

	return out.String()
}
