// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Built-in defaults for the system and app configs.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("scroll", Section{
		"overscan":        2,
		"wheel_step":      3,
		"settle_delay_ms": 150,
	})
	cfg.RegisterDefaults("theme", Section{
		"foreground": "white",
		"background": "black",
	})
}

func applyAppDefaults(name string, cfg Config) {
	if cfg == nil {
		return
	}
	switch name {
	case "virtdemo":
		cfg.RegisterDefaults("virtdemo", Section{
			"rows": 100000,
			"wrap": true,
		})
	case "logview":
		cfg.RegisterDefaults("logview", Section{
			"highlight": true,
			"style":     "monokai",
			"language":  "",
		})
	}
}
