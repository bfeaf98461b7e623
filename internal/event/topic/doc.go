// Package topic provides the event name type used by the dispatcher.
//
// Names may be namespaced with dot notation:
//
//	user.registered
//	plugin.spell.loaded
//
// Dispatch compares names exactly; there is no wildcard or hierarchy
// matching. The segment helpers exist for callers that build namespaced
// names, such as script bindings that prefix everything they emit.
package topic
