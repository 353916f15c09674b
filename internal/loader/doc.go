// Package loader builds food catalogs from the caret-delimited text format:
// a header line followed by one "description^calories^weight" record per
// line. Catalogs can be read from local files or S3 objects, and local files
// can be watched for changes.
package loader
