// Package route is a typed HTTP routing and dispatch engine. Endpoints are
// immutable values built from a method, a path pattern and declared
// parameters; handlers read validated parameter values instead of raw
// strings, and every failure flows through one error pipeline.
//
// Parameters are declared once and reused:
//
//	var userID = route.PathParam("userId", route.OfNonNegativeInt)
//	var limit = route.OptionalQuery("limit", route.OfNonNegativeInt, 20, route.EmptyAsMissing())
//
// Endpoints are registered with the package-level generic Handle function:
//
//	svc := route.New(route.WithAddr(":3000"))
//	r := svc.Router()
//	route.Handle(r, route.GET("users", userID, "posts").With(limit), listPosts)
//	route.Handle(r, route.POST("users", userID, "posts"), createPost)
//
// where handlers look like:
//
//	func createPost(r *route.Request, body CreatePostRequest) (route.Response, error) {
//	    post, err := store.Create(r.Context(), userID.Get(r), body)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return route.Created(post), nil
//	}
//
// Requests run through a fixed pipeline: parameter binding and body decoding,
// before hooks, conditions, decorations around the handler, and after hooks.
// Errors returned or panicked anywhere in that pipeline are converted to
// responses by the ErrorPipeline, which matches on the error's type.
// Decorations installed with Around wrap the whole pipeline, so headers such
// as CORS reach failed requests too.
//
// Bulk transforms apply to endpoints already registered on a router or group:
//
//	admin := r.Group("admin")
//	route.Handle(admin, route.DELETE("users", userID), deleteUser)
//	admin.OnlyIf(auth.HasRole(token, auth.RoleAdmin))
package route
