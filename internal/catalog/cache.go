package catalog

import "basegraph.app/arena/common/llm"

// RequestCache resolves each profile id at most once. It is meant for a single
// request and is not safe for concurrent use.
type RequestCache struct {
	catalog *Catalog
	clients map[string]llm.Completer
}

func (c *Catalog) NewRequestCache() *RequestCache {
	return &RequestCache{catalog: c, clients: make(map[string]llm.Completer)}
}

func (r *RequestCache) Resolve(profileID string) (llm.Completer, error) {
	if client, ok := r.clients[profileID]; ok {
		return client, nil
	}
	client, err := r.catalog.Resolve(profileID)
	if err != nil {
		return nil, err
	}
	r.clients[profileID] = client
	return client, nil
}
