package handler

// DI for all handlers and models alike.

import (
	ggdb "github.com/yumyai/genegraph/pkg/db"
	"github.com/yumyai/genegraph/pkg/model"
)

// Uploads above this size spill to temporary files.
const defaultMaxMemory = 32 << 20

type GraphContext struct {
	Store     *ggdb.GraphStore
	Config    model.Config
	MaxMemory int64
}

func NewGraphContext(store *ggdb.GraphStore, cfg model.Config) *GraphContext {
	return &GraphContext{
		Store:     store,
		Config:    cfg,
		MaxMemory: defaultMaxMemory,
	}
}
