// Package bdispatch provides an embeddable HTTP request dispatcher built from composable routing steps and
// error-returning handlers.
//
// # Overview
//
// A [Dispatcher] answers every request in two phases. Routing walks a graph of [Router] values, each one
// inspecting the request and returning the next [Target], until something that is not a router comes
// back. That terminal value is then written as the response. Handlers return errors instead of writing
// error pages themselves, which keeps error responses in one place.
//
// A minimal example:
//
//	site := bdispatch.NewPathRouter(nil, bdispatch.Table{
//	    {Key: "@GET /", Target: bdispatch.Text("home")},
//	    {Key: "GET /items/%:id", Target: bdispatch.HandlerFunc(func(c *bdispatch.Context, env *bdispatch.Env) error {
//	        item, err := db.GetItem(c.Param("id"))
//	        if err != nil {
//	            return bdispatch.NewError(bdispatch.CodeNotFound, err)
//	        }
//	        return bdispatch.NewJSON(item).Handle(c, env)
//	    })},
//	    {Key: "/static", Target: bdispatch.NewFolderHandler("./public", bdispatch.FolderOptions{})},
//	})
//
//	http.ListenAndServe(":8080", bdispatch.New(site))
//
// # Targets
//
// A [Target] is one of a closed set of shapes:
//
//   - a router: [*PathRouter], [*HostRouter], [*MethodRouter], [FunctionRouter], [*PathArgRouter],
//     [*HostArgRouter], [*SetCodeRouter] or any [Router] lifted with [Next]
//   - a handler: [*DataHandler], [*FileHandler], [*FolderHandler], [*JSONHandler], [*RedirectHandler],
//     [HandlerFunc] or any [Handler] lifted with [Handle], including standard library handlers lifted
//     with [Mount]
//   - a body: [Text], [Binary] or a reader lifted with [Stream]
//   - a status [Code]
//
// # Route Tables
//
// [NewPathRouter] and [NewHostRouter] compile a [Table] into a segment trie. Path keys look like
// "GET /users/%:id": an optional method, then "/" separated segments. A "%:name" segment matches any
// single segment and stores it in [Context.Params]. A key matches its path and everything below it;
// the deepest match wins and the segments below it are left for the next router, so tables nest:
//
//	api := bdispatch.NewPathRouter(nil, bdispatch.Table{
//	    {Key: "GET /users", Target: listUsers},
//	    {Key: "@GET /users/%:id", Target: getUser},
//	})
//
//	root := bdispatch.NewPathRouter(nil, bdispatch.Table{
//	    {Key: "/api/v1", Target: api},
//	    {Key: "*", Target: bdispatch.Text("fallback")},
//	})
//
// A leading "@" anchors a key: it only matches when the path ends exactly there, and then it wins over
// an unanchored key at the same node. The "*" key is used when nothing else matches. Host keys work the
// same with "." separated labels written top level domain first: ".com.example.%:tenant" matches
// "acme.example.com".
//
// # Status Codes and Errors
//
// Routers and handlers end a request with a status by returning a [Code], or an error that carries one:
//
//	return bdispatch.CodeForbidden
//	return bdispatch.NewError(bdispatch.CodeNotFound, fmt.Errorf("user %s not found", id))
//
// The dispatcher looks the code up in the status code handlers ([WithCodeHandlers], and per request
// [*SetCodeRouter]) and writes that handler, or a plain "404 Not Found" style body when there is none.
// Any other error is reported to the [Logger] and answered as a 500. If answering fails as well the
// failure is reported as a warning and a bare 500 is written, if the headers were not sent yet.
//
// Routing is bounded: a request passing through more routers than [WithMaxRoutingSteps] allows is
// answered with 508 Loop Detected, so router graphs may contain cycles.
//
// # Static Files
//
// [*FileHandler] and [*FolderHandler] serve files from a [FileSystem]: the local disk by default,
// any [fs.FS] through [FromFS], or an S3 bucket through the s3fs package. They answer conditional
// requests (If-None-Match, If-Modified-Since) with 304 when caching is enabled and honor single byte
// ranges, including If-Range. Folders reject paths that escape the root or contain hidden names.
//
// # Middleware
//
// Middleware wraps the resolved handler of every request. The middleware provided first is the outer
// most wrapping:
//
//	d := bdispatch.New(root)
//	d.Use(func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
//	    return func(c *bdispatch.Context, env *bdispatch.Env) error {
//	        c.Writer.Header().Set("X-Request-ID", "req-123")
//	        return next(c, env)
//	    }
//	})
//
// # Named Keys and URL Reversing
//
// Path keys can be named for URL generation, avoiding hardcoded paths:
//
//	rev := bdispatch.NewReverser()
//	table := bdispatch.Table{rev.Entry("get-user", "GET /users/%:id", getUser)}
//
//	loc, err := rev.Reverse("get-user", "123") // returns "/users/123"
package bdispatch
