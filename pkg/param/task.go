package param

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Task is one reconciliation request in a task file: a feature, a desired
// state, and the feature's parameters.
type Task struct {
	Name    string         `yaml:"name,omitempty"`
	Device  string         `yaml:"device,omitempty"`
	Feature string         `yaml:"feature"`
	State   string         `yaml:"state,omitempty"`
	Params  map[string]any `yaml:"params,omitempty"`
}

// TaskDefaults are file-level values applied to tasks that omit them.
type TaskDefaults struct {
	Device string `yaml:"device,omitempty"`
	State  string `yaml:"state,omitempty"`
}

// TaskFile is a parsed task file.
type TaskFile struct {
	Defaults TaskDefaults `yaml:"defaults"`
	Tasks    []Task       `yaml:"tasks"`
}

// LoadTasks reads a YAML task file, applies file-level defaults, and
// validates that every task names a feature and a device.
func LoadTasks(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tasks %s: %w", path, err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing tasks %s: %w", path, err)
	}

	if len(tf.Tasks) == 0 {
		return nil, fmt.Errorf("tasks %s: no tasks defined", path)
	}

	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		if t.Device == "" {
			t.Device = tf.Defaults.Device
		}
		if t.State == "" {
			t.State = tf.Defaults.State
		}
		if t.State == "" {
			t.State = "present"
		}

		prefix := fmt.Sprintf("task %d", i+1)
		if t.Name != "" {
			prefix = fmt.Sprintf("task %d (%s)", i+1, t.Name)
		}
		if t.Feature == "" {
			return nil, fmt.Errorf("%s: feature is required", prefix)
		}
		if t.Device == "" {
			return nil, fmt.Errorf("%s: device is required (set per task or in defaults)", prefix)
		}
	}

	return &tf, nil
}
