//nolint:wrapcheck
package main

import (
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/measure"
	"github.com/farcloser/mixcritic/internal/output"
)

func outputResult(object string, result *mixcritic.Result, report *measure.Report, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any

	if debug {
		meta = output.ResultToMap(result)
		if report != nil {
			meta["measure"] = output.ReportToMap(report)
		}
	} else {
		meta = output.FriendlyMap(result)
	}

	data := &format.Data{
		Object: object,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}
