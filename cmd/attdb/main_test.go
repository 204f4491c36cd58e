package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/srg/attdb/internal/codegen"
	"github.com/srg/attdb/internal/testutils"
	"github.com/srg/attdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const temperatureSource = `
temperature: { uuid: 0x1234, characteristics: {
    temp:     { uuid: 0x5678, permissions: (READ_ENABLED), length: 4, user_description: "Temp", read_handler: handlers::ReadTemp },
    setpoint: { uuid: 0x5679, permissions: (WRITE_ENABLED), length: 2, write_handler: handlers::WriteSetpoint },
} }
`

const batterySource = `
battery: { uuid: 0x180F, characteristics: {
    level: { uuid: 0x2A19, permissions: (READ_ENABLED | NOTIFICATION_ENABLED), length: consts::LEVEL_LEN,
             user_description: "Level", read_handler: battery::ReadLevel },
} }
`

// CommandTestSuite runs the attdb command tree against files in a temp dir.
type CommandTestSuite struct {
	suite.Suite
	dir    string
	stderr *bytes.Buffer
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func (s *CommandTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.stderr = new(bytes.Buffer)
}

// WriteFile creates name in the suite dir and returns its path.
func (s *CommandTestSuite) WriteFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ExecuteCommand runs a fresh command tree with args, returns stdout and error.
// Stderr (logs) is kept in s.stderr.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(s.stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CommandTestSuite) TestVersion() {
	out, err := s.ExecuteCommand("--version")
	s.Require().NoError(err)
	s.Contains(out, "attdb version dev (commit none, built unknown)")
}

func (s *CommandTestSuite) TestCompileGoSource() {
	src := s.WriteFile("temperature.attdb", temperatureSource)

	out, err := s.ExecuteCommand("compile", src,
		"--package", "firmware", "--prefix", "Custs1", "--task-id", "0x3F",
		"--import", "example.com/fw/handlers")
	s.Require().NoError(err)
	testutils.NewTextAsserter(s.T()).AssertGolden(out, "../../internal/codegen/testdata/temperature.go.golden")
	s.Contains(s.stderr.String(), "Compiled attribute database")
}

func (s *CommandTestSuite) TestCompileJSONToFile() {
	src := s.WriteFile("temperature.attdb", temperatureSource)
	dst := filepath.Join(s.dir, "temperature.json")

	out, err := s.ExecuteCommand("compile", src, "-f", "json", "-o", dst)
	s.Require().NoError(err)
	s.Empty(out)
	s.Contains(s.stderr.String(), "Wrote artifact")

	data, err := os.ReadFile(dst)
	s.Require().NoError(err)
	var artifact codegen.Artifact
	s.Require().NoError(json.Unmarshal(data, &artifact))
	s.Equal("temperature.attdb", artifact.Source)
	s.Equal(6, artifact.RecordCount)
	s.Equal([]int{0, 6}, artifact.ServiceStarts)
}

func (s *CommandTestSuite) TestCompileFailureWritesNothing() {
	src := s.WriteFile("broken.attdb", `s: { uuid: 0x1, characteristics: { c: { uuid: 0x2, permissions: (READ_ENABLED), length: 1 } } }`)
	dst := filepath.Join(s.dir, "broken.go")

	out, err := s.ExecuteCommand("compile", src, "-o", dst)
	s.Require().Error(err)
	s.Empty(out)
	s.NoFileExists(dst)
	s.Equal(src+":1:39: characteristic `c` has read permission but no read handler", FormatUserError(err))
}

func (s *CommandTestSuite) TestCompileResolvesConstants() {
	src := s.WriteFile("battery.attdb", batterySource)

	out, err := s.ExecuteCommand("compile", src, "--format", "table", "--const", "consts::LEVEL_LEN=1")
	s.Require().NoError(err)
	s.Contains(out, "0x8001")
	s.Contains(out, "records: 4  services: [0, 4]")

	out, err = s.ExecuteCommand("compile", src, "--format", "table")
	s.Require().NoError(err)
	s.Contains(out, "0x8000|consts.LEVEL_LEN")
}

func (s *CommandTestSuite) TestCompileRejectsBadFlags() {
	src := s.WriteFile("battery.attdb", batterySource)

	_, err := s.ExecuteCommand("compile", src, "--const", "LEVEL_LEN")
	s.ErrorIs(err, ErrInvalidFlag)

	_, err = s.ExecuteCommand("compile", src, "--const", "LEVEL_LEN=70000")
	s.ErrorIs(err, ErrInvalidFlag)

	_, err = s.ExecuteCommand("compile", src, "--format", "xml")
	s.ErrorIs(err, config.ErrInvalidConfig)

	_, err = s.ExecuteCommand("compile", src, "--grammar", "toml")
	s.ErrorIs(err, config.ErrInvalidConfig)

	_, err = s.ExecuteCommand("compile", src, "--log-level", "loud")
	s.ErrorIs(err, config.ErrInvalidConfig)

	_, err = s.ExecuteCommand("compile")
	s.Error(err)
}

func (s *CommandTestSuite) TestConfigFile() {
	src := s.WriteFile("battery.attdb", batterySource)
	cfg := s.WriteFile("attdb.yaml", `
format: json
log_level: error
constants:
  consts.LEVEL_LEN: 2
`)

	out, err := s.ExecuteCommand("compile", src, "--config", cfg)
	s.Require().NoError(err)
	s.Empty(s.stderr.String(), "error level hides info logs")

	var artifact codegen.Artifact
	s.Require().NoError(json.Unmarshal([]byte(out), &artifact))
	s.Require().Len(artifact.Records, 4)
	s.Require().NotNil(artifact.Records[2].MaxLength)
	s.Equal(uint16(0x8002), *artifact.Records[2].MaxLength)

	// flags win over the file
	out, err = s.ExecuteCommand("compile", src, "--config", cfg, "--format", "table", "--const", "consts.LEVEL_LEN=3")
	s.Require().NoError(err)
	s.Contains(out, "0x8003")

	_, err = s.ExecuteCommand("compile", src, "--config", filepath.Join(s.dir, "missing.yaml"))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *CommandTestSuite) TestCheck() {
	a := s.WriteFile("temperature.attdb", temperatureSource)
	b := s.WriteFile("entries.attdb", `{ etype: service, uuid16: 0x180F }, { etype: characteristic, uuid16: 0x2A19, length: 1, perm: (READ_ENABLED) }`)

	out, err := s.ExecuteCommand("check", a, b)
	s.Require().NoError(err)
	s.Equal(a+": ok (records grammar, 6 records, 1 services, 1 read routes, 1 write routes)\n"+
		b+": ok (entries grammar, 3 records, 1 services, 0 read routes, 0 write routes)\n", out)

	_, err = s.ExecuteCommand("check", a, "--grammar", "entries")
	s.Require().Error(err)
	s.Contains(FormatUserError(err), a+":2:1: expected '{', found identifier \"temperature\"")
}

func (s *CommandTestSuite) TestInspect() {
	src := s.WriteFile("battery.attdb", batterySource)

	out, err := s.ExecuteCommand("inspect", src, "--no-color", "--const", "consts.LEVEL_LEN=1")
	s.Require().NoError(err)
	s.Contains(out, "0x2A19 (Battery Level)")
	s.Contains(out, "records: 4  services: [0, 4]")
	s.Contains(out, "Service 0x180F (Battery Service)  [0-3]\n")
	s.Contains(out, "  Characteristic 0x2A19 (Battery Level)  value 2  props: read, notify\n")
	s.Contains(out, "    Descriptor 0x2901 (Characteristic User Descriptor)  handle 3  \"Level\"\n")
	s.NotContains(out, "\x1b[")

	out, err = s.ExecuteCommand("inspect", src, "--table-only")
	s.Require().NoError(err)
	s.NotContains(out, "Service 0x180F")
}

func TestFormatUserError(t *testing.T) {
	_, err := os.ReadFile(filepath.Join(t.TempDir(), "nope.attdb"))
	assert.Contains(t, FormatUserError(err), "nope.attdb: no such file")

	assert.Equal(t, "plain", FormatUserError(errors.New("plain")))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.0", formatVersion("1.2.0"))
	assert.Equal(t, "dev", formatVersion("dev"))
}
