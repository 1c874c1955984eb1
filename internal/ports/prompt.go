package ports

// Prompter reads interactive input from the operator.
type Prompter interface {
	// ReadLine displays the prompt and returns one line of input.
	ReadLine(prompt string) (string, error)

	// ReadSecret displays the prompt and returns input without echoing it.
	ReadSecret(prompt string) (string, error)
}
