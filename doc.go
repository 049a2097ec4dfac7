// Package graw provides stateful controllers for Reddit resources on top of a thin, typed model layer.
//
// # Overview
//
// A Dispatch owns the authenticated transport and one model per endpoint family
// (LinksAndComments, Modmail, Users, Moderation). Models build one REST call, execute it and
// decode the body into a structure from pkg/types. Controllers (Post, SelfPost, LinkPost,
// Comment, Conversation, User) are mutable records of what the client currently believes about a
// remote thing; their operations call a model, pass the response through Validate and then either
// import it in place or build a new controller.
//
// # Quick Start
//
//	d, err := graw.NewDispatch(ctx, &graw.Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		Username:     "your-username",
//		Password:     "your-password",
//		UserAgent:    "myapp/1.0 by /u/yourusername",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	draft := graw.NewSelfPost(d, "test", "Hello", "World")
//	post, err := draft.Submit(ctx, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(post.Fullname) // t3_...
//
// NewDispatch authenticates immediately; bad credentials are reported there.
//
// # Controller Lifecycle
//
// Every controller is in one of three states:
//
//   - Stub: only the fullname (or modmail id, or user name) is known. About hydrates it in place.
//   - Draft: caller-supplied content and no fullname. Submit returns a NEW hydrated controller
//     and leaves the draft untouched.
//   - Hydrated: built from a listing or a previous call. Edit, Vote and friends refresh it in place.
//
// A controller's Fullname never changes once set. Import refuses data describing a different
// thing with a *errors.StateError.
//
// # Error Handling
//
// All errors are typed and can be inspected with errors.As:
//
//	if _, err := post.About(ctx); err != nil {
//		var apiErr *errors.APIError
//		var retErr *errors.RetrievalError
//		switch {
//		case errors.As(err, &apiErr):
//			// Reddit rejected the call
//		case errors.As(err, &retErr):
//			// the call succeeded but returned a different or no post
//		}
//	}
//
// Nothing is retried. Transport failures are *errors.RequestError. Malformed fullnames, subreddit
// names and usernames are rejected locally with a *errors.StateError before any request is sent.
//
// # Asynchronous Operations
//
// Every operation has an Async variant returning a *Future. The work runs once on its own
// goroutine and Wait returns exactly what the synchronous call would have:
//
//	f := draft.SubmitAsync(ctx, nil)
//	// ...
//	post, err := f.Wait()
//
// WaitAll waits for a group of futures.
//
// # Thread Safety
//
// A Dispatch is safe for concurrent use. Controllers are single-owner records and must not be
// shared between goroutines while an operation is running.
package graw
