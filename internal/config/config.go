// Package config loads HTIP device identity from environment variables,
// with an optional TOML override file, for both daemons.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Role distinguishes the two daemons' default identity strings.
type Role int

const (
	RoleAgent Role = iota
	RoleSwitch
)

// ManufacturerCodeLen is the fixed wire length of the manufacturer-code
// field; values are padded with trailing spaces or truncated to fit.
const ManufacturerCodeLen = 6

const (
	maxDeviceCategoryLen = 255
	maxModelFieldLen     = 31
)

// ErrConfigInvalid is returned when a loaded identity value violates its
// length constraint.
var ErrConfigInvalid = errors.New("config: invalid")

// Identity is the device-identity information HTIP device-info TLVs
// advertise.
type Identity struct {
	DeviceCategory   string
	ManufacturerCode string
	ModelName        string
	ModelNumber      string
}

func defaultsFor(role Role) Identity {
	switch role {
	case RoleSwitch:
		return Identity{
			DeviceCategory:   "COM_Switch",
			ManufacturerCode: "JAIST",
			ModelName:        "JAIST_VSW_01",
			ModelNumber:      "VSW01",
		}
	default:
		return Identity{
			DeviceCategory:   "AV_TV",
			ManufacturerCode: "JAIST",
			ModelName:        "JAIST_VTV_01",
			ModelNumber:      "VTV01",
		}
	}
}

// tomlIdentity mirrors Identity for decoding an optional override file.
type tomlIdentity struct {
	DeviceCategory   string `toml:"device_category"`
	ManufacturerCode string `toml:"manufacturer_code"`
	ModelName        string `toml:"model_name"`
	ModelNumber      string `toml:"model_number"`
}

// Load resolves an Identity for role: defaults, then tomlPath (if
// non-empty) overrides the defaults, then environment variables
// (DEVICE_CATEGORY, MANUFACTURER_CODE, MODEL_NAME, MODEL_NUMBER) override
// everything else — a deliberate precedence choice, since the
// specification this loader implements is silent on it. The manufacturer
// code is padded with trailing spaces or truncated to exactly
// ManufacturerCodeLen octets before validation.
func Load(role Role, tomlPath string) (Identity, error) {
	id := defaultsFor(role)

	if tomlPath != "" {
		var t tomlIdentity
		if _, err := toml.DecodeFile(tomlPath, &t); err != nil {
			return Identity{}, fmt.Errorf("%w: reading %s: %v", ErrConfigInvalid, tomlPath, err)
		}
		if t.DeviceCategory != "" {
			id.DeviceCategory = t.DeviceCategory
		}
		if t.ManufacturerCode != "" {
			id.ManufacturerCode = t.ManufacturerCode
		}
		if t.ModelName != "" {
			id.ModelName = t.ModelName
		}
		if t.ModelNumber != "" {
			id.ModelNumber = t.ModelNumber
		}
	}

	if v, ok := os.LookupEnv("DEVICE_CATEGORY"); ok {
		id.DeviceCategory = v
	}
	if v, ok := os.LookupEnv("MANUFACTURER_CODE"); ok {
		id.ManufacturerCode = v
	}
	if v, ok := os.LookupEnv("MODEL_NAME"); ok {
		id.ModelName = v
	}
	if v, ok := os.LookupEnv("MODEL_NUMBER"); ok {
		id.ModelNumber = v
	}

	id.ManufacturerCode = fitManufacturerCode(id.ManufacturerCode)

	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

func fitManufacturerCode(code string) string {
	if len(code) >= ManufacturerCodeLen {
		return code[:ManufacturerCodeLen]
	}
	for len(code) < ManufacturerCodeLen {
		code += " "
	}
	return code
}

// Validate checks every field's length constraint, returning
// ErrConfigInvalid describing the first violation found.
func (id Identity) Validate() error {
	if len(id.DeviceCategory) > maxDeviceCategoryLen {
		return fmt.Errorf("%w: device_category length %d exceeds %d", ErrConfigInvalid, len(id.DeviceCategory), maxDeviceCategoryLen)
	}
	if len(id.ManufacturerCode) != ManufacturerCodeLen {
		return fmt.Errorf("%w: manufacturer_code length %d, want exactly %d", ErrConfigInvalid, len(id.ManufacturerCode), ManufacturerCodeLen)
	}
	if len(id.ModelName) > maxModelFieldLen {
		return fmt.Errorf("%w: model_name length %d exceeds %d", ErrConfigInvalid, len(id.ModelName), maxModelFieldLen)
	}
	if len(id.ModelNumber) > maxModelFieldLen {
		return fmt.Errorf("%w: model_number length %d exceeds %d", ErrConfigInvalid, len(id.ModelNumber), maxModelFieldLen)
	}
	return nil
}
