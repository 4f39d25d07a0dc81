package main

import (
	"github.com/go-rod/recorder"
	"github.com/go-rod/recorder/lib/probe"
	"github.com/tidwall/sjson"
)

// summary of a finished recording in json, the probe key is only set when res isn't nil
func summary(params recorder.Params, output string, res *probe.Result) (string, error) {
	values := map[string]interface{}{
		"output":   output,
		"url":      params.URL,
		"duration": params.DurationSeconds,
	}

	if res != nil {
		values["probe.format"] = res.Format
		values["probe.duration"] = res.Duration.Seconds()
		values["probe.codec"] = res.Codec
		values["probe.width"] = res.Width
		values["probe.height"] = res.Height
	}

	s := "{}"
	for _, key := range []string{
		"output", "url", "duration",
		"probe.format", "probe.duration", "probe.codec", "probe.width", "probe.height",
	} {
		v, has := values[key]
		if !has {
			continue
		}

		var err error
		s, err = sjson.Set(s, key, v)
		if err != nil {
			return "", err
		}
	}

	return s, nil
}
