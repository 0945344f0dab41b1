package nxapi

import "github.com/tidwall/sjson"

// NX-API envelope values
const (
	apiVersion       = "1.0"
	typeCLIShow      = "cli_show"
	typeCLIShowASCII = "cli_show_ascii"
	typeCLIConf      = "cli_conf"

	// commandSeparator joins multiple commands into one cli_conf input.
	commandSeparator = " ; "
)

// requestBody builds the ins_api envelope for one call.
func requestBody(reqType, input string) (string, error) {
	body := ""
	var err error
	for _, field := range []struct {
		path  string
		value string
	}{
		{"ins_api.version", apiVersion},
		{"ins_api.type", reqType},
		{"ins_api.chunk", "0"},
		{"ins_api.sid", "1"},
		{"ins_api.input", input},
		{"ins_api.output_format", "json"},
	} {
		body, err = sjson.Set(body, field.path, field.value)
		if err != nil {
			return "", err
		}
	}
	return body, nil
}
