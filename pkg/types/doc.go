// Package types defines the records, configuration value object, default
// rules payloads and standard errors shared by the assetfix packages.
//
// Asset is a node of the nested-set permission tree stored in #__assets.
// Extension, Category and Content are the read-only source rows the tree is
// rebuilt from; each pass only writes back the asset_id column.
package types
