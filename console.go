package minibank

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const menu = `
[d] Deposit
[s] Withdraw
[e] Statement
[nu] New user
[nc] New account
[lc] List accounts
[q] Quit

=> `

// Amounts typed at the console are bounded so that rescaling them against a balance stays cheap.
const (
	maxAmountScale  = 8
	maxAmountDigits = 18
)

// errAborted ends a command after its failure has already been reported to the operator.
var errAborted = errors.New("command aborted")

// Console is the interactive text menu in front of a Service.
type Console struct {
	Svc Service
	Log *zerolog.Logger

	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(svc Service, in io.Reader, out io.Writer, log *zerolog.Logger) *Console {
	return &Console{
		Svc: svc,
		Log: log,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run reads commands until the operator quits or input ends. Only I/O failures are returned.
func (c *Console) Run() error {
	for {
		line, err := c.readLine(menu)
		if errors.Is(err, io.EOF) {
			return c.quit()
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "d":
			err = c.deposit()
		case "s":
			err = c.withdraw()
		case "e":
			err = c.statement()
		case "nu":
			err = c.newUser()
		case "nc":
			err = c.newAccount()
		case "lc":
			err = c.listAccounts()
		case "q":
			return c.quit()
		default:
			err = c.println("Invalid operation, please select the desired operation again.")
		}

		switch {
		case err == nil, errors.Is(err, errAborted):
		case errors.Is(err, io.EOF):
			return c.quit()
		default:
			return err
		}
	}
}

func (c *Console) readLine(prompt string) (string, error) {
	if _, err := io.WriteString(c.out, prompt); err != nil {
		return "", err
	}
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(a ...interface{}) error {
	_, err := fmt.Fprintln(c.out, a...)
	return err
}

// fail reports err to the operator and aborts the current command.
func (c *Console) fail(method string, err error) error {
	c.Log.Debug().Err(err).Str("method", method).Msg("command failed")
	if perr := c.println(Message(err)); perr != nil {
		return perr
	}
	return errAborted
}

func (c *Console) selectAccount(method string) (*Account, error) {
	accts, err := c.Svc.ListAccounts()
	if err != nil {
		return nil, c.fail(method, err)
	}
	if len(accts) == 0 {
		if err = c.println("There are no accounts registered."); err != nil {
			return nil, err
		}
		return nil, errAborted
	}

	branch, err := c.readLine("Enter the branch (e.g. 0001): ")
	if err != nil {
		return nil, err
	}
	raw, err := c.readLine("Enter the account number: ")
	if err != nil {
		return nil, err
	}
	number, err := strconv.Atoi(raw)
	if err != nil {
		return nil, c.fail(method, ErrBadRequest{Fields: map[string]string{"number": "not an integer"}})
	}

	acct, err := c.Svc.SelectAccount(SelectReq{Branch: branch, Number: number})
	if err != nil {
		return nil, c.fail(method, err)
	}
	return acct, nil
}

func (c *Console) readAmount(method, prompt string) (decimal.Decimal, error) {
	raw, err := c.readLine(prompt)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, c.fail(method, ErrBadRequest{Fields: map[string]string{"amount": "not a number"}})
	}
	if err = checkAmount(amount); err != nil {
		return decimal.Zero, c.fail(method, err)
	}
	return amount, nil
}

// checkAmount rejects amounts with more than maxAmountScale decimal places or more than
// maxAmountDigits integer digits. It only inspects the coefficient and exponent, never rescales.
func checkAmount(amount decimal.Decimal) error {
	exp := int(amount.Exponent())
	if exp < -maxAmountScale || exp > maxAmountDigits || amount.NumDigits()+exp > maxAmountDigits {
		return ErrBadRequest{Fields: map[string]string{"amount": "out of range"}}
	}
	return nil
}

func (c *Console) deposit() error {
	acct, err := c.selectAccount("deposit")
	if err != nil {
		return err
	}
	amount, err := c.readAmount("deposit", "Enter the deposit amount: ")
	if err != nil {
		return err
	}
	rcpt, err := c.Svc.Deposit(ChargeReq{Amount: amount, Branch: acct.Branch, Number: acct.Number})
	if err != nil {
		return c.fail("deposit", err)
	}
	return c.println(rcpt.Message)
}

func (c *Console) withdraw() error {
	acct, err := c.selectAccount("withdraw")
	if err != nil {
		return err
	}
	amount, err := c.readAmount("withdraw", "Enter the withdrawal amount: ")
	if err != nil {
		return err
	}
	rcpt, err := c.Svc.Withdraw(ChargeReq{Amount: amount, Branch: acct.Branch, Number: acct.Number})
	if err != nil {
		return c.fail("withdraw", err)
	}
	return c.println(rcpt.Message)
}

func (c *Console) statement() error {
	acct, err := c.selectAccount("statement")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	req := StatementReq{Branch: acct.Branch, Number: acct.Number, Format: FormatText}
	if err = c.Svc.Statement(&buf, req); err != nil {
		return c.fail("statement", err)
	}
	_, err = fmt.Fprintf(c.out, "\n================ STATEMENT ================\n%s===========================================\n\n", buf.String())
	return err
}

func (c *Console) newUser() error {
	prompts := []string{
		"Full name: ",
		"Birth date (DD/MM/YYYY): ",
		"Identifier (digits only or with punctuation): ",
		"Street (e.g. ABC Street, 10): ",
		"Neighborhood: ",
		"City: ",
		"State (abbreviation): ",
	}
	answers := make([]string, len(prompts))
	for i, p := range prompts {
		a, err := c.readLine(p)
		if err != nil {
			return err
		}
		answers[i] = a
	}

	req := RegisterUserReq{
		Name:       answers[0],
		BirthDate:  answers[1],
		Identifier: answers[2],
		Address:    ComposeAddress(answers[3], answers[4], answers[5], answers[6]),
	}
	if _, err := c.Svc.RegisterUser(req); err != nil {
		return c.fail("register_user", err)
	}
	return c.println("User registered successfully.")
}

func (c *Console) newAccount() error {
	id, err := c.readLine("Enter the identifier of the user who will own the account: ")
	if err != nil {
		return err
	}
	acct, err := c.Svc.OpenAccount(OpenAccountReq{Identifier: id})
	if err != nil {
		return c.fail("open_account", err)
	}
	return c.println(fmt.Sprintf("Account created successfully. Branch: %s  Number: %d", acct.Branch, acct.Number))
}

func (c *Console) listAccounts() error {
	accts, err := c.Svc.ListAccounts()
	if err != nil {
		return c.fail("list_accounts", err)
	}
	if len(accts) == 0 {
		return c.println("No accounts registered.")
	}

	if err = c.println("\n=== Registered accounts ==="); err != nil {
		return err
	}
	for _, a := range accts {
		holder, id := "", ""
		if a.Owner != nil {
			holder, id = a.Owner.Name, a.Owner.Identifier
		}
		line := fmt.Sprintf("Branch: %s | Account: %d | Holder: %s | ID: %s", a.Branch, a.Number, holder, id)
		if err = c.println(line); err != nil {
			return err
		}
	}
	if err = c.println("==========================="); err != nil {
		return err
	}
	return c.println()
}

func (c *Console) quit() error {
	return c.println("Closing. Goodbye!")
}
