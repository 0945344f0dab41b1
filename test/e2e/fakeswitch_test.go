package e2e_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// fakeSwitch is a stateful NX-API endpoint for one switch. It understands
// the snmp-server community commands and answers show snmp community from
// its current state, so reconciliation runs observe their own writes.
type fakeSwitch struct {
	mu    sync.Mutex
	comms map[string]*community
	confs []string // configuration commands in arrival order
}

type community struct {
	group string
	acl   string
}

func newFakeSwitch() *fakeSwitch {
	return &fakeSwitch{comms: make(map[string]*community)}
}

func (s *fakeSwitch) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(s.handle))
}

// configured returns the community's state, or ok=false when absent.
func (s *fakeSwitch) configured(name string) (community, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comms[name]
	if !ok {
		return community{}, false
	}
	return *c, true
}

// confCount returns how many configuration commands arrived.
func (s *fakeSwitch) confCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.confs)
}

func (s *fakeSwitch) handle(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != "admin" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	req := gjson.ParseBytes(data)
	input := req.Get("ins_api.input").String()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Get("ins_api.type").String() {
	case "cli_show", "cli_show_ascii":
		s.handleShow(w, input)
	case "cli_conf":
		s.handleConf(w, input)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *fakeSwitch) handleShow(w http.ResponseWriter, input string) {
	if input != "show snmp community" {
		writeOutput(w, map[string]any{
			"code": "400", "msg": "Input CLI command error",
			"clierror": "% Invalid command: " + input,
		})
		return
	}

	names := make([]string, 0, len(s.comms))
	for name := range s.comms {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]any, 0, len(names))
	for _, name := range names {
		c := s.comms[name]
		acl := c.acl
		if acl == "" {
			acl = "-"
		}
		rows = append(rows, map[string]string{
			"community_name": name,
			"grouporaccess":  c.group,
			"aclfilter":      acl,
		})
	}

	// NX-OS quirk: a single table row is an object, several are an array.
	body := map[string]any{}
	switch len(rows) {
	case 0:
	case 1:
		body["TABLE_snmp_community"] = map[string]any{"ROW_snmp_community": rows[0]}
	default:
		body["TABLE_snmp_community"] = map[string]any{"ROW_snmp_community": rows}
	}
	writeOutput(w, map[string]any{"code": "200", "msg": "Success", "body": body})
}

func (s *fakeSwitch) handleConf(w http.ResponseWriter, input string) {
	var outputs []any
	for _, command := range strings.Split(input, " ; ") {
		s.confs = append(s.confs, command)
		if err := s.applyConf(command); err != nil {
			outputs = append(outputs, map[string]any{
				"code": "400", "msg": "Input CLI command error", "clierror": err.Error(),
			})
			break
		}
		outputs = append(outputs, map[string]any{"code": "200", "msg": "Success"})
	}
	writeOutput(w, outputs)
}

func (s *fakeSwitch) applyConf(command string) error {
	f := strings.Fields(command)
	switch {
	case len(f) == 4 && f[0] == "no" && f[1] == "snmp-server" && f[2] == "community":
		delete(s.comms, f[3])
		return nil
	case len(f) == 5 && f[0] == "snmp-server" && f[1] == "community" && f[3] == "group":
		s.community(f[2]).group = f[4]
		return nil
	case len(f) == 5 && f[0] == "snmp-server" && f[1] == "community" && f[3] == "use-acl":
		s.community(f[2]).acl = f[4]
		return nil
	}
	return fmt.Errorf("%% Invalid command: %s", command)
}

func (s *fakeSwitch) community(name string) *community {
	c, ok := s.comms[name]
	if !ok {
		c = &community{}
		s.comms[name] = c
	}
	return c
}

func writeOutput(w http.ResponseWriter, output any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ins_api": map[string]any{"outputs": map[string]any{"output": output}},
	})
}
