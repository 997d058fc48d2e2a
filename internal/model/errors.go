package model

import (
	"fmt"
	"strings"
)

// StockShortage reports that a requested quantity exceeds what is in stock.
// The message is user-facing; the unit description is dropped for the
// implicit "EA" unit.
type StockShortage struct {
	ProductName string
	Available   int
	UnitCode    string
	UnitDesc    string
}

func (e *StockShortage) Error() string {
	if e.UnitCode == EachUnitCode {
		return fmt.Sprintf("sorry, for product %q we only have %d in stock; please adjust the quantity to buy",
			e.ProductName, e.Available)
	}
	return fmt.Sprintf("sorry, for product %q we only have %d %s in stock; please adjust the quantity to buy",
		e.ProductName, e.Available, strings.ToLower(e.UnitDesc))
}
