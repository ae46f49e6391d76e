// Package router implements the request resolver: the stateless
// decision component that picks cache, historical store, or live source
// per request and orchestrates fallback between them.
package router
