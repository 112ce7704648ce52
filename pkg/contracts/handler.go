package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that mounts its endpoints on a router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
