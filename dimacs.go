package main

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cnf is a parsed formula: variables are numbered 1..Vars, literals are
// signed nonzero integers.
type Cnf struct {
	Vars    int
	Clauses [][]Lit
}

func readClause(line string) ([]Lit, int, error) {
	values := strings.Fields(line)
	if values[len(values)-1] != "0" {
		return nil, 0, errors.Errorf("the end of clause is not 0: %q", line)
	}
	var lits []Lit
	maxVar := 0
	for _, tok := range values[:len(values)-1] {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "bad literal %q", tok)
		}
		if v == 0 {
			return nil, 0, errors.Errorf("literal 0 inside clause: %q", line)
		}
		l := Lit(v)
		if l.Var() > maxVar {
			maxVar = l.Var()
		}
		lits = append(lits, l)
	}
	return lits, maxVar, nil
}

// parseDimacs reads a DIMACS CNF stream. Comment lines are skipped; the
// problem line is honored but the variable count grows to cover any literal
// seen past it.
func parseDimacs(in *bufio.Scanner) (*Cnf, error) {
	cnf := &Cnf{}
	declared := 0
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" || strings.HasPrefix(line, "c") || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			values := strings.Fields(line)
			if len(values) != 4 || values[1] != "cnf" {
				return nil, errors.Errorf("bad problem line: %q", line)
			}
			vars, err := strconv.Atoi(values[2])
			if err != nil {
				return nil, errors.Wrapf(err, "bad variable count in %q", line)
			}
			declared, err = strconv.Atoi(values[3])
			if err != nil {
				return nil, errors.Wrapf(err, "bad clause count in %q", line)
			}
			if vars > cnf.Vars {
				cnf.Vars = vars
			}
			continue
		}
		lits, maxVar, err := readClause(line)
		if err != nil {
			return nil, err
		}
		if maxVar > cnf.Vars {
			cnf.Vars = maxVar
		}
		cnf.Clauses = append(cnf.Clauses, lits)
	}
	if err := in.Err(); err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	if declared != 0 && declared != len(cnf.Clauses) {
		logrus.WithFields(logrus.Fields{
			"declared": declared,
			"parsed":   len(cnf.Clauses),
		}).Warn("clause count does not match the problem line")
	}
	return cnf, nil
}
