package engine

import "strconv"

// BuildArgs assembles the llama-cli argument list for p. GPU offload is
// always disabled (-ngl 0).
func BuildArgs(p Params) []string {
	args := []string{
		"-m", p.Model,
		"-n", strconv.Itoa(p.NPredict),
		"-t", strconv.Itoa(p.Threads),
		"-p", p.Prompt,
		"-ngl", "0",
		"-c", strconv.Itoa(p.CtxSize),
		"--temp", strconv.FormatFloat(p.Temperature, 'f', -1, 64),
	}
	if p.Conversation {
		args = append(args, "-cnv")
	}
	return args
}
