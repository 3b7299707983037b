package main

import (
	"time"

	"github.com/g960059/ormlite"
	"github.com/g960059/ormlite/descriptorbuilder"
)

// Widget is the demo's one mapped record type: an auto-increment integer
// primary key, a unique SKU, a name, a quantity, an active flag, and a
// creation timestamp stored as Unix ticks.
type Widget struct {
	ID        int64     `orm:"id,autoinc"`
	SKU       string    `orm:"sku,unique,unique_index=widgets_sku"`
	Name      string    `orm:"name"`
	Quantity  int64     `orm:"quantity"`
	Active    bool      `orm:"active"`
	CreatedAt time.Time `orm:"created_at,ticks"`
}

func widgetTableDescriptor() (*ormlite.TableDescriptor, error) {
	return descriptorbuilder.FromStruct("widgets", &Widget{})
}
