package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func GetFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "debug,d",
			Usage: "Debug mode",
		},
		cli.BoolTFlag{
			Name:  "verbosity,verb",
			Usage: "Verbosity mode",
		},
		cli.StringFlag{
			Name:  "input-file, in",
			Usage: "Input cnf file for solving (required)",
			Value: "None",
		},
		cli.IntFlag{
			Name:  "cpu-time-limit",
			Usage: "Limit on CPU time allowed in seconds",
			Value: -1,
		},
		cli.StringFlag{
			Name:  "result-output-file, out",
			Usage: "Write the result and model to this file as well",
		},
	}
}

func ValidateFlags(c *cli.Context) error {
	if c.String("input-file") == "None" {
		return errors.New("input-file is required")
	}
	return nil
}

func printProblemStatistics(s *Solver) {
	fmt.Printf("c ============================[ Problem Statistics ]============================\n")
	fmt.Printf("c |  Number of variables:  %12d                                       |\n", s.NumVars())
	fmt.Printf("c |  Number of clauses:    %12d                                       |\n", s.Stats().NumClauses)
	fmt.Printf("c ===============================================================================\n")
}

func printStatistics(s *Solver, start time.Time) {
	elapsed := time.Since(start).Seconds()
	st := s.Stats()
	fmt.Printf("c ===============================================================================\n")
	fmt.Printf("c restarts: %12d\n", st.RestartCount)
	fmt.Printf("c conflicts: %12d (%.02f / sec)\n", st.ConflictCount, float64(st.ConflictCount)/elapsed)
	fmt.Printf("c decisions: %12d (%.02f / sec)\n", st.DecisionCount, float64(st.DecisionCount)/elapsed)
	fmt.Printf("c propagations: %12d (%.02f / sec)\n", st.PropagationCount, float64(st.PropagationCount)/elapsed)
	fmt.Printf("c learnt clauses: %12d\n", st.NumLearnts)
	fmt.Printf("c cpu time: %12f\n", elapsed)
}

func modelLine(s *Solver) string {
	var b strings.Builder
	b.WriteString("v")
	for _, l := range s.Model() {
		fmt.Fprintf(&b, " %d", l)
	}
	b.WriteString(" 0")
	return b.String()
}

func setTimeout(s *Solver, limitSeconds int) {
	if limitSeconds <= 0 {
		return
	}
	go func() {
		<-time.After(time.Duration(limitSeconds) * time.Second)
		logrus.Warn("cpu time limit reached")
		s.Interrupt()
	}()
}

func setInterrupt(s *Solver) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logrus.Warn("interrupted")
		s.Interrupt()
	}()
}

func writeResult(path, result string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create result file %s", path)
	}
	defer f.Close()
	_, err = io.WriteString(f, result)
	return errors.Wrapf(err, "write result file %s", path)
}

func main() {
	app := cli.NewApp()
	app.Name = "tinisat"
	app.Usage = "A CDCL SAT solver written in Go"
	app.Flags = GetFlags()

	app.Before = func(c *cli.Context) error {
		if c.Bool("debug") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	}

	app.Action = func(c *cli.Context) error {
		if err := ValidateFlags(c); err != nil {
			fmt.Println(err)
			cli.ShowAppHelpAndExit(c, 2)
		}

		inputFile := c.String("input-file")
		fp, err := os.Open(inputFile)
		if err != nil {
			return errors.Wrapf(err, "open %s", inputFile)
		}
		defer fp.Close()

		cnf, err := parseDimacs(bufio.NewScanner(fp))
		if err != nil {
			return errors.Wrapf(err, "parse %s", inputFile)
		}

		start := time.Now()
		solver := NewSolver(cnf)
		setTimeout(solver, c.Int("cpu-time-limit"))
		setInterrupt(solver)

		if c.BoolT("verbosity") {
			printProblemStatistics(solver)
		}
		sat, runErr := solver.Run()
		if c.BoolT("verbosity") {
			printStatistics(solver, start)
		}

		var result string
		switch {
		case runErr == errInterrupted:
			result = "s INDETERMINATE\n"
		case runErr == errVerify:
			result = "s UNKNOWN\n"
		case sat:
			result = "s SATISFIABLE\n" + modelLine(solver) + "\n"
		default:
			result = "s UNSATISFIABLE\n"
		}
		fmt.Print(result)
		if err := writeResult(c.String("result-output-file"), result); err != nil {
			return err
		}
		if runErr == errVerify {
			return cli.NewExitError("verification failed", 1)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
