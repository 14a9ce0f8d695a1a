package engine

import (
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/signal"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProfitFactorCap is reported as the profit factor when there are gains but no losses.
const ProfitFactorCap = 999.0

type BacktestEngineV1Config struct {
	EngineVersion   string                     `yaml:"engine_version" json:"engine_version,omitempty" jsonschema:"title=Engine Version,description=Engine version the configuration was written for. Major and minor must match the running engine"`
	InitialCapital  float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital used when the command line does not set one,minimum=0" validate:"gte=0"`
	Seed            optional.Option[int64]     `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Optional seed of the random source. Run i of a batch uses seed + i"`
	MaxParallelRuns int                        `yaml:"max_parallel_runs" json:"max_parallel_runs" jsonschema:"title=Max Parallel Runs,description=Number of runs of a batch executed at the same time,minimum=1" validate:"gte=1"`
	ProfitFactorCap float64                    `yaml:"profit_factor_cap" json:"profit_factor_cap" jsonschema:"title=Profit Factor Cap,description=Profit factor reported when there are gains but no losses" validate:"gt=0"`
	LogLevel        string                     `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error" validate:"omitempty,oneof=debug info warn error"`
	Generator       datasource.GeneratorConfig `yaml:"generator" json:"generator" jsonschema:"title=Generator,description=Synthetic series generation"`
	Detector        signal.DetectorConfig      `yaml:"detector" json:"detector" jsonschema:"title=Detector,description=Signal detection rules"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Keys missing from the document keep the values already set on c.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		EngineVersion   *string                    `yaml:"engine_version"`
		InitialCapital  *float64                   `yaml:"initial_capital"`
		Seed            *int64                     `yaml:"seed"`
		MaxParallelRuns *int                       `yaml:"max_parallel_runs"`
		ProfitFactorCap *float64                   `yaml:"profit_factor_cap"`
		LogLevel        *string                    `yaml:"log_level"`
		Generator       datasource.GeneratorConfig `yaml:"generator"`
		Detector        signal.DetectorConfig      `yaml:"detector"`
	}

	config := Config{
		Generator: c.Generator,
		Detector:  c.Detector,
	}
	if err := value.Decode(&config); err != nil {
		return err
	}

	if config.EngineVersion != nil {
		c.EngineVersion = *config.EngineVersion
	}

	if config.InitialCapital != nil {
		c.InitialCapital = *config.InitialCapital
	}

	if config.Seed != nil {
		c.Seed = optional.Some(*config.Seed)
	}

	if config.MaxParallelRuns != nil {
		c.MaxParallelRuns = *config.MaxParallelRuns
	}

	if config.ProfitFactorCap != nil {
		c.ProfitFactorCap = *config.ProfitFactorCap
	}

	if config.LogLevel != nil {
		c.LogLevel = *config.LogLevel
	}

	c.Generator = config.Generator
	c.Detector = config.Detector

	return nil
}

// MarshalYAML writes the seed as a plain number, or omits it.
func (c BacktestEngineV1Config) MarshalYAML() (any, error) {
	type Config struct {
		EngineVersion   string                     `yaml:"engine_version,omitempty"`
		InitialCapital  float64                    `yaml:"initial_capital"`
		Seed            *int64                     `yaml:"seed,omitempty"`
		MaxParallelRuns int                        `yaml:"max_parallel_runs"`
		ProfitFactorCap float64                    `yaml:"profit_factor_cap"`
		LogLevel        string                     `yaml:"log_level"`
		Generator       datasource.GeneratorConfig `yaml:"generator"`
		Detector        signal.DetectorConfig      `yaml:"detector"`
	}

	var seed *int64

	if c.Seed.IsSome() {
		v := c.Seed.Unwrap()
		seed = &v
	}

	return Config{
		EngineVersion:   c.EngineVersion,
		InitialCapital:  c.InitialCapital,
		Seed:            seed,
		MaxParallelRuns: c.MaxParallelRuns,
		ProfitFactorCap: c.ProfitFactorCap,
		LogLevel:        c.LogLevel,
		Generator:       c.Generator,
		Detector:        c.Detector,
	}, nil
}

// Validate validates the configuration.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest engine config", err)
	}

	if c.EngineVersion != "" {
		return version.CheckConfigCompatibility(version.GetVersion(), c.EngineVersion)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[int64]" {
				return &jsonschema.Schema{
					Type: "integer",
				}
			}

			if t.String() == "types.IndicatorMode" {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllIndicatorModes,
				}
			}

			if t.String() == "types.RuleType" {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllRuleTypes,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a deterministic configuration with a fixed seed.
func TestConfig(seed int64) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialCapital = 10000
	config.Seed = optional.Some(seed)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		EngineVersion:   "",
		InitialCapital:  100000,
		Seed:            optional.None[int64](),
		MaxParallelRuns: 4,
		ProfitFactorCap: ProfitFactorCap,
		LogLevel:        "info",
		Generator:       datasource.DefaultGeneratorConfig(),
		Detector:        signal.DefaultDetectorConfig(),
	}
}
