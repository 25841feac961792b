package main

import (
	"flag"
	"testing"
)

func TestFlagsHaveShortAndLongForms(t *testing.T) {
	pairs := [][2]string{
		{"h", "help"},
		{"V", "version"},
		{"e", "eval"},
		{"c", "config"},
	}

	for _, pair := range pairs {
		for _, name := range pair {
			if flag.Lookup(name) == nil {
				t.Errorf("flag -%s not registered", name)
			}
		}
	}
}
