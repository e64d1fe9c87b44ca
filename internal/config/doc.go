// Package config defines the bootstrapper settings: install paths,
// package and interpreter names, asset endpoints, and privileged
// destinations. Settings are persisted as YAML; the file is optional
// and absent fields fall back to the stock hhd deployment values.
package config
