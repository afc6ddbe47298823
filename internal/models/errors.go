package models

import "errors"

var ErrOrderNotPlaceable = errors.New("order is not in a placeable state")
