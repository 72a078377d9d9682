package book

// Session events.
// ENUM(ready, online, offline, stored, unload, chapter_displayed, page_changed)
type EventKind int

// Structural facets of the book becoming ready independently.
// ENUM(manifest, spine, metadata, cover, toc, all)
type Facet int

// Transition points where registered gates can hold navigation.
// ENUM(before_chapter_display)
type HookPoint int

// Loading stages which could fail.
// ENUM(container, package, toc, archive)
type Stage int

// How book structure is obtained on open.
// ENUM(restore, unpack, unarchive)
type Strategy int
