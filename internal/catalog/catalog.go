package catalog

// SongCatalog is the read-only collaborator the state restore path uses to
// validate song references. The catalog database itself (schema, CRUD) is
// owned by the song library subsystem, not by this daemon.
type SongCatalog interface {
	HasSong(id string) (bool, error)
	Close() error
}

// StaticCatalog is a fixed in-memory catalog, used in tests and as a
// stand-in when a profile has no catalog database yet.
type StaticCatalog struct {
	IDs map[string]struct{}
}

func NewStaticCatalog(ids ...string) *StaticCatalog {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &StaticCatalog{IDs: set}
}

func (c *StaticCatalog) HasSong(id string) (bool, error) {
	_, ok := c.IDs[id]
	return ok, nil
}

func (c *StaticCatalog) Close() error { return nil }
