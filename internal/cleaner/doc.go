// Package cleaner normalises datasets by replacing every missing cell with
// zero.
//
// A Cleaner is built around a source location:
//
//	c := cleaner.New("dummy_filter_format.csv", cleaner.WithOutputPath("updated_nulls.csv"))
//	if err := c.Clean(ctx); err != nil {
//		// the failure was also printed; c.Table() reports false
//	}
//	t, _ := c.Table()
//
// Clean both prints a status line and returns a typed error, so interactive
// and automated callers are served by the same call.
package cleaner
