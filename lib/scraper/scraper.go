package scraper

// every site client here is read-only and stateless: each method's output
// depends solely on its input plus whatever the remote site serves back.
// there is no login state, no cache, no cross-call coordination.

// each scraping method has the same linear structure:
// 1. make assertions on input validity.
// 2. transform input into an HTTP request (method, url, headers, body).
// 3. make the request.
// 4. make assertions on response validity (status, expected body type).
// 5. transform the response into the output records.
//    -> various goquery selectors into a struct or slices of structs
//    -> json -> struct
//    -> an obfuscated token -> securetoken.Unscramble -> follow-up request

// failures are never retried here, a caller that wants retries wraps the
// whole method. network errors and missing required markup both fail the
// call, optional markup that is absent just leaves the field zeroed.
