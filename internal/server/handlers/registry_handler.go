package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// EntityRoutes are the CRUD endpoints of one reference collection.
type EntityRoutes struct {
	List   gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

type entityOps[T any] struct {
	list   func(models.Principal) ([]T, error)
	add    func(context.Context, models.Principal, T) (T, error)
	update func(context.Context, models.Principal, int, T) (T, error)
	remove func(context.Context, models.Principal, int) error
}

func (h *Handler) Producers() EntityRoutes {
	return entityRoutes(h, entityOps[models.Producer]{
		list: h.state.Producers, add: h.state.AddProducer, update: h.state.UpdateProducer, remove: h.state.RemoveProducer,
	})
}

func (h *Handler) Customers() EntityRoutes {
	return entityRoutes(h, entityOps[models.Customer]{
		list: h.state.Customers, add: h.state.AddCustomer, update: h.state.UpdateCustomer, remove: h.state.RemoveCustomer,
	})
}

func (h *Handler) Agencies() EntityRoutes {
	return entityRoutes(h, entityOps[models.Agency]{
		list: h.state.Agencies, add: h.state.AddAgency, update: h.state.UpdateAgency, remove: h.state.RemoveAgency,
	})
}

func (h *Handler) StorageLocations() EntityRoutes {
	return entityRoutes(h, entityOps[models.StorageLocation]{
		list: h.state.StorageLocations, add: h.state.AddStorageLocation, update: h.state.UpdateStorageLocation, remove: h.state.RemoveStorageLocation,
	})
}

func entityRoutes[T any](h *Handler, ops entityOps[T]) EntityRoutes {
	return EntityRoutes{
		List: func(c *gin.Context) {
			items, err := ops.list(principal(c))
			if err != nil {
				h.fail(c, err)
				return
			}
			c.JSON(http.StatusOK, items)
		},
		Create: func(c *gin.Context) {
			var in T
			if err := bind(c, &in); err != nil {
				h.fail(c, err)
				return
			}
			out, err := ops.add(c.Request.Context(), principal(c), in)
			h.respond(c, http.StatusCreated, out, err)
		},
		Update: func(c *gin.Context) {
			id, err := pathID(c)
			if err != nil {
				h.fail(c, err)
				return
			}
			var in T
			if err := bind(c, &in); err != nil {
				h.fail(c, err)
				return
			}
			out, err := ops.update(c.Request.Context(), principal(c), id, in)
			h.respond(c, http.StatusOK, out, err)
		},
		Delete: func(c *gin.Context) {
			id, err := pathID(c)
			if err != nil {
				h.fail(c, err)
				return
			}
			err = ops.remove(c.Request.Context(), principal(c), id)
			h.respond(c, http.StatusOK, gin.H{"deleted": id}, err)
		},
	}
}
