// Package docsgate provides a routing and redirect layer for serving
// versioned documentation sites out of an object store.
//
// The Router turns a request path into a Response descriptor. It never
// writes to the network itself; the http package owns that edge.
//
// # Routing
//
// Paths are classified in this order:
//
//   - Root ("" or "/"): 302 redirect to /latest/ on the same host
//   - Latest alias ("/latest/..."): 302 redirect to the version named by
//     the latest-version.txt object
//   - Versioned resource (everything else): the path is mapped to a storage
//     key and the object is streamed back with an immutable cache policy,
//     falling back to 404.html (never cached) or a plain 404
//
// # Key Components
//
//   - Router: stateless path classifier and response builder
//   - ObjectStore: read-only key/value object store (filesystem, s3, catalog, memstore)
//   - Response: status, headers, and body produced for a single request
//
// # Example Usage
//
//	store := memstore.New()
//	router := docsgate.NewRouter(store, docsgate.RouterConfig{})
//
//	resp, err := router.Route(ctx, "/latest/guide/", "docs.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer resp.Close()
//
// See the http package for the HTTP server and the filesystem, s3 and catalog
// packages for store implementations.
package docsgate
