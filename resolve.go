package passpersist

import "github.com/golangsnmp/passpersist/mib"

// resolver is the engine's data-access capability. The command loop
// depends only on this interface; whether a call is answered by a
// direct hook or by rebuilding a snapshot from the provider is fixed at
// construction.
type resolver interface {
	get(oid mib.Oid) (mib.Record, bool, error)
	next(oid mib.Oid) (mib.Record, bool, error)
	dump() ([]mib.Record, error)
}

// newResolver composes the configured access paths: hooks take
// precedence per operation, the provider backs everything else, and an
// entirely unconfigured agent reports ErrNoSource on first use rather
// than at startup.
func newResolver(cfg config) resolver {
	var base resolver = unconfigured{}
	if cfg.provider != nil {
		base = &providerResolver{provider: cfg.provider}
	}
	if cfg.getHook != nil || cfg.nextHook != nil {
		return &hookResolver{getFn: cfg.getHook, nextFn: cfg.nextHook, fallback: base}
	}
	return base
}

// providerResolver rebuilds a fresh tree for every call, so each answer
// reflects a current snapshot and no state crosses requests.
type providerResolver struct {
	provider Provider
}

func (p *providerResolver) build() (*mib.Tree, error) {
	tree := mib.NewTree()
	if err := p.provider(tree); err != nil {
		return nil, err
	}
	tree.Freeze()
	return tree, nil
}

func (p *providerResolver) get(oid mib.Oid) (mib.Record, bool, error) {
	tree, err := p.build()
	if err != nil {
		return mib.Record{}, false, err
	}
	rec, ok := tree.Get(oid)
	return rec, ok, nil
}

func (p *providerResolver) next(oid mib.Oid) (mib.Record, bool, error) {
	tree, err := p.build()
	if err != nil {
		return mib.Record{}, false, err
	}
	rec, ok := tree.Next(oid)
	return rec, ok, nil
}

func (p *providerResolver) dump() ([]mib.Record, error) {
	tree, err := p.build()
	if err != nil {
		return nil, err
	}
	return tree.Ordered(), nil
}

// hookResolver answers through per-operation hooks where present and
// falls back to the underlying resolver otherwise. DUMP always needs a
// full enumeration, so it always falls through.
type hookResolver struct {
	getFn    LookupFunc
	nextFn   LookupFunc
	fallback resolver
}

func (h *hookResolver) get(oid mib.Oid) (mib.Record, bool, error) {
	if h.getFn != nil {
		rec, ok := h.getFn(oid)
		return rec, ok, nil
	}
	return h.fallback.get(oid)
}

func (h *hookResolver) next(oid mib.Oid) (mib.Record, bool, error) {
	if h.nextFn != nil {
		rec, ok := h.nextFn(oid)
		return rec, ok, nil
	}
	return h.fallback.next(oid)
}

func (h *hookResolver) dump() ([]mib.Record, error) {
	return h.fallback.dump()
}

// unconfigured reports the missing data source on first use.
type unconfigured struct{}

func (unconfigured) get(mib.Oid) (mib.Record, bool, error) {
	return mib.Record{}, false, ErrNoSource
}

func (unconfigured) next(mib.Oid) (mib.Record, bool, error) {
	return mib.Record{}, false, ErrNoSource
}

func (unconfigured) dump() ([]mib.Record, error) {
	return nil, ErrNoSource
}
