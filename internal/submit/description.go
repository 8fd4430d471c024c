package submit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoExecutable = errors.New("submit description requires an executable")
	ErrNoArgsFile   = errors.New("submit description requires an arguments file")
)

// Description is the declarative HTCondor submit description. Every field
// is passed through to the scheduler; none are interpreted locally.
type Description struct {
	Universe     string // execution environment
	Executable   string // program run for each job
	Arguments    string // argument template expanded per queued job
	Log          string // scheduler event log path template
	Output       string // job stdout path template
	Error        string // job stderr path template
	RequestCPUs  int
	JobFlavour   string // time-class label (CERN batch convention)
	MaxRetries   int
	OnExitRemove string // exit predicate deciding whether the job is done
	Requirements string // constraint, e.g. anti-affinity after a retry
	ArgsFile     string // arguments file referenced by the queue directive
}

// DefaultDescription returns the submit description used for DQ batches.
// Path templates use the scheduler's $(...) macros, expanded per job.
func DefaultDescription(executable, logDir, argsFile string) Description {
	return Description{
		Universe:     "vanilla",
		Executable:   executable,
		Arguments:    "run $(run) $(outputDir)",
		Log:          logDir + "/run_$(run).log",
		Output:       logDir + "/run_$(run).$(ClusterId).$(ProcId).out",
		Error:        logDir + "/run_$(run).$(ClusterId).$(ProcId).err",
		RequestCPUs:  1,
		JobFlavour:   "workday",
		MaxRetries:   3,
		OnExitRemove: "(ExitBySignal == False) && (ExitCode == 0)",
		Requirements: "Machine =!= LastRemoteHost",
		ArgsFile:     argsFile,
	}
}

// Render serialises the description in the scheduler's key = value format,
// keys in fixed order.
func (d Description) Render() (string, error) {
	if d.Executable == "" {
		return "", ErrNoExecutable
	}
	if d.ArgsFile == "" {
		return "", ErrNoArgsFile
	}

	var b strings.Builder
	write := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s = %s\n", key, value)
		}
	}

	write("universe", d.Universe)
	write("executable", d.Executable)
	if d.Arguments != "" {
		fmt.Fprintf(&b, "arguments = \"%s\"\n", d.Arguments)
	}
	write("log", d.Log)
	write("output", d.Output)
	write("error", d.Error)
	if d.RequestCPUs > 0 {
		fmt.Fprintf(&b, "request_cpus = %d\n", d.RequestCPUs)
	}
	if d.JobFlavour != "" {
		fmt.Fprintf(&b, "+JobFlavour = %q\n", d.JobFlavour)
	}
	if d.MaxRetries > 0 {
		fmt.Fprintf(&b, "max_retries = %d\n", d.MaxRetries)
	}
	write("on_exit_remove", d.OnExitRemove)
	write("requirements", d.Requirements)
	fmt.Fprintf(&b, "\nqueue run,outputDir from %s\n", d.ArgsFile)
	return b.String(), nil
}
