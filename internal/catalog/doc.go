// Package catalog reads, updates and durably rewrites the product catalog.
//
// A catalog is a JSON array of product objects. Records keep their key order
// and every value photolink does not own is carried as the exact bytes read
// from disk, so unknown fields survive a rewrite unchanged. The owned keys are
// image, images, original_image and image_match.
//
// Apply is pure and computes the next version of one record from its
// reconcile outcome. Commit is the only writer: it locks the catalog, takes a
// verified backup and replaces the file with a temp-then-rename write.
package catalog
