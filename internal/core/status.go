package core

import (
	"os"
	"reflect"

	"github.com/tidwall/gjson"

	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

// KeyStatus describes one installed settings leaf as it stands on disk.
type KeyStatus struct {
	Path      string // dotted settings path
	Present   bool   // key exists in the current settings file
	Unchanged bool   // current value still equals what the install wrote
}

// Status summarizes an installed bundle for one target.
type Status struct {
	Receipt *Receipt // nil when nothing is installed
	Keys    []KeyStatus
}

// ReadStatus inspects a target's config directory: the install receipt plus
// the current state of every settings key the bundle merged in.
func ReadStatus(t target.Target, configDir string) (*Status, error) {
	if configDir == "" {
		configDir = t.ConfigDir()
	}

	receipt, err := ReadReceipt(configDir)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return &Status{}, nil
	}

	st := &Status{Receipt: receipt}
	if len(receipt.Settings) == 0 {
		return st, nil
	}

	data, err := os.ReadFile(t.SettingsPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			for _, l := range collectLeaves(receipt.Settings, "") {
				st.Keys = append(st.Keys, KeyStatus{Path: l.path})
			}
			return st, nil
		}
		return nil, err
	}
	content := string(data)

	for _, l := range collectLeaves(receipt.Settings, "") {
		cur := gjson.Get(content, l.path)
		ks := KeyStatus{Path: l.path, Present: cur.Exists()}
		if ks.Present {
			ks.Unchanged = reflect.DeepEqual(cur.Value(), jsonShape(l.value))
		}
		st.Keys = append(st.Keys, ks)
	}
	return st, nil
}
