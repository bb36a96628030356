package all

import (
	// Import all the converters so they register themselves
	_ "github.com/darianmavgo/csv2sqlite/converters/csv"
	_ "github.com/darianmavgo/csv2sqlite/converters/excel"
)
