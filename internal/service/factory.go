package service

import (
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
)

type ServicesConfig struct {
	Catalog       *catalog.Catalog
	Composer      debate.Composer
	Producer      queue.Producer    // nil disables async debates
	Broadcaster   queue.Broadcaster // nil = no spectators
	DefaultRounds int
}

type Services struct {
	debates DebateService
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		debates: NewDebateService(cfg.Catalog, cfg.Composer, cfg.Producer, cfg.Broadcaster, cfg.DefaultRounds),
	}
}

func (s *Services) Debates() DebateService {
	return s.debates
}
