package storage

// How fetched resource is going to be interpreted by the caller.
// ENUM(xml, text, binary)
type Format int
