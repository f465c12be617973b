// Package imagecache provides the pinned texture cache backing a render
// context's UnpinImages semantics.
//
// Images referenced by the frame being prepared are pinned and cannot be
// evicted. At the start of each sync phase the render context unpins
// everything from the previous frame, dropping the images into an LRU of
// bounded size; images the next frames keep touching survive, cold ones are
// evicted and released.
//
// The cache is safe for concurrent use, though in the intended deployment
// all calls arrive on the render thread.
package imagecache
