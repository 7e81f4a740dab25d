package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/mixcritic/tests/testutils"
)

const loudFunkMix = `measurements:
  integratedLoudness: -8.5
  dynamicRange: 4.2
`

const onTargetFunkMix = `measurements:
  integratedLoudness: -14
  dynamicRange: 8
`

func TestSuggest(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "suggest without arguments fails",
			Command:     test.Command("suggest"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "suggest with a missing file fails",
			Command:     test.Command("suggest", "/nonexistent/measurements.yaml"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "loud funk mix gets loudness and dynamics suggestions",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("file", data.Temp().Save(loudFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("suggest", "--genre", "funk", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("2 suggestions against funk (worst: adjust"),
						expectContains("louder than the funk target of -14"),
						expectContains("below the funk target of 8"),
					),
				}
			},
		},
		{
			Description: "mix on target gets no suggestions",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("file", data.Temp().Save(onTargetFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("suggest", "--genre", "funk", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("0 suggestions against funk (worst: ok"),
						expectNotContains("themes"),
					),
				}
			},
		},
		{
			Description: "debug output carries raw deviations",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("file", data.Temp().Save(loudFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("--debug", "suggest", "--genre", "funk", "--format", "json", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("worst_severity"),
						expectContains("deviations"),
						expectContains("integratedLoudness"),
					),
				}
			},
		},
		{
			Description: "unknown genre fails",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("file", data.Temp().Save(loudFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("suggest", "--genre", "polka", data.Labels().Get("file"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "unknown stage fails",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("file", data.Temp().Save(loudFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("suggest", "--stage", "demo", data.Labels().Get("file"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "custom profile overrides the genre",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("profile", data.Temp().Save(
					"genre: house\nmetrics:\n  integratedLoudness: {target: -8, tolerance: 1}\n", "house.yaml"))
				data.Labels().Set("file", data.Temp().Save(loudFunkMix, "measurements.yaml"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("suggest", "--profile", data.Labels().Get("profile"), data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("0 suggestions against house"),
				}
			},
		},
	}

	testCase.Run(t)
}
