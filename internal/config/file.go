package config

import "time"

// OracleSection is the oracle: section of the config file.
type OracleSection struct {
	Endpoint    string         `yaml:"endpoint,omitempty"`
	Model       string         `yaml:"model,omitempty"`
	Temperature *float64       `yaml:"temperature,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	Proxy       string         `yaml:"proxy,omitempty"`
	Disabled    *bool          `yaml:"disabled,omitempty"`
}

// CleaningSection is the cleaning: section of the config file.
type CleaningSection struct {
	BatchSize      *int     `yaml:"batch_size,omitempty"`
	SampleSize     *int     `yaml:"sample_size,omitempty"`
	Seed           *uint64  `yaml:"seed,omitempty"`
	EmptyThreshold *float64 `yaml:"empty_threshold,omitempty"`
	RareThreshold  *int     `yaml:"rare_threshold,omitempty"`
	Concurrency    *int     `yaml:"concurrency,omitempty"`
}

// OutputSection is the output: section of the config file.
type OutputSection struct {
	Dir     string `yaml:"dir,omitempty"`
	Sink    string `yaml:"sink,omitempty"`
	DBDir   string `yaml:"db_dir,omitempty"`
	History *bool  `yaml:"history,omitempty"`
}

// File represents the structure of the .aicleaner configuration file.
// Unset keys leave the corresponding Config value untouched.
type File struct {
	Oracle   OracleSection   `yaml:"oracle,omitempty"`
	Cleaning CleaningSection `yaml:"cleaning,omitempty"`
	Output   OutputSection   `yaml:"output,omitempty"`
}

// Apply copies every value set in the file onto c.
func (f *File) Apply(c *Config) {
	o := f.Oracle
	setString(&c.OracleEndpoint, o.Endpoint)
	setString(&c.OracleModel, o.Model)
	setString(&c.ProxyAddress, o.Proxy)
	setValue(&c.OracleTemperature, o.Temperature)
	setValue(&c.OracleTimeout, o.Timeout)
	setValue(&c.NoOracle, o.Disabled)

	cl := f.Cleaning
	setValue(&c.BatchSize, cl.BatchSize)
	setValue(&c.SampleSize, cl.SampleSize)
	setValue(&c.Seed, cl.Seed)
	setValue(&c.EmptyThreshold, cl.EmptyThreshold)
	setValue(&c.RareThreshold, cl.RareThreshold)
	setValue(&c.Concurrency, cl.Concurrency)

	out := f.Output
	setString(&c.OutputDir, out.Dir)
	setString(&c.Sink, out.Sink)
	setString(&c.DBDir, out.DBDir)
	setValue(&c.SaveHistory, out.History)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
