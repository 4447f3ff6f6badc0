package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"eduguide/models"
	"eduguide/services"
	"eduguide/views"
)

const chatGreeting = "Hello! I'm your career guidance assistant. Ask me about streams, colleges or entrance exams."

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one trimmed line. io.EOF is returned only when nothing was
// typed before the input closed.
func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return line, err
	}
	return line, nil
}

func promptIfEmpty(v *string, label string) error {
	if strings.TrimSpace(*v) != "" {
		return nil
	}
	line, err := prompt(label)
	if err != nil {
		return err
	}
	*v = line
	return nil
}

func (a *app) requireUser() (*models.User, error) {
	u := a.auth.CurrentUser()
	if !a.auth.IsAuthenticated() || u == nil {
		return nil, errors.New("not signed in: run `eduguide login` first")
	}
	return u, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	otp := fs.Bool("otp", false, "sign in with a one-time code sent by email")
	guest := fs.Bool("guest", false, "continue as a guest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *guest {
		if !a.auth.GuestLogin(ctx) {
			return errors.New("guest login failed")
		}
		fmt.Println("Signed in as guest.")
		return nil
	}

	if err := promptIfEmpty(email, "Email: "); err != nil {
		return err
	}
	if *otp {
		ok, msg := a.auth.SendOTP(ctx, *email)
		if !ok {
			return errors.New(msg)
		}
		fmt.Println(msg)
		code, err := prompt("OTP: ")
		if err != nil {
			return err
		}
		if ok, msg := a.auth.VerifyOTP(ctx, *email, code); !ok {
			return errors.New(msg)
		}
	} else {
		if err := promptIfEmpty(password, "Password: "); err != nil {
			return err
		}
		if !a.auth.Login(ctx, *email, *password) {
			return errors.New("Login failed. Please check your credentials.")
		}
	}

	fmt.Printf("Welcome, %s.\n", a.auth.CurrentUser().Name)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	var f services.RegisterFields
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.StringVar(&f.Name, "name", "", "full name")
	fs.StringVar(&f.Email, "email", "", "email address")
	fs.StringVar(&f.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&f.ConfirmPassword, "confirm", "", "password again")
	fs.StringVar(&f.District, "district", "", "home district")
	fs.StringVar(&f.ClassName, "class", "", "current class, e.g. 12")
	verify := fs.Bool("otp", false, "verify the email with a one-time code first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, p := range []struct {
		v     *string
		label string
	}{
		{&f.Name, "Name: "},
		{&f.Email, "Email: "},
		{&f.Password, "Password: "},
		{&f.ConfirmPassword, "Confirm password: "},
		{&f.District, "District: "},
		{&f.ClassName, "Class: "},
	} {
		if err := promptIfEmpty(p.v, p.label); err != nil {
			return err
		}
	}

	if *verify {
		ok, msg := a.auth.SendRegistrationOTP(ctx, f)
		if !ok {
			return errors.New(msg)
		}
		fmt.Println(msg)
		code, err := prompt("OTP: ")
		if err != nil {
			return err
		}
		f.OTP = code
	}

	res := a.auth.Register(ctx, f)
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Println(res.Message)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := services.NewRecommendationService(a.store).Clear(ctx); err != nil {
		a.log.Warn("failed to clear stored recommendations", "error", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *app) whoami() error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	kind := "student"
	if u.Guest {
		kind = "guest"
	}
	fmt.Printf("%s <%s> (%s, id %d)\n", u.Name, u.Email, kind, u.ID)
	if u.District != "" || u.ClassName != "" {
		fmt.Printf("District: %s  Class: %s\n", u.District, u.ClassName)
	}

	info, err := a.auth.TokenInfo()
	if err != nil {
		a.log.Debug("token not inspectable", "error", err)
		return nil
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid until"
		if info.Expired(time.Now()) {
			state = "expired at"
		}
		fmt.Printf("Session %s %s\n", state, info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) quiz(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	tick := fs.Duration("tick", time.Second, "countdown period")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireUser(); err != nil {
		return err
	}

	done := make(chan struct{})
	var once sync.Once
	session := services.NewQuizSession(a.api, a.store, a.log,
		services.WithTickInterval(*tick),
		services.WithStateListener(func(st services.QuizState) {
			if st == services.QuizCompleted || st == services.QuizError {
				once.Do(func() { close(done) })
			}
		}))

	if err := session.Load(ctx); err != nil {
		return errors.New(session.Error())
	}
	quiz := session.Quiz()
	fmt.Printf("%s\n%s\n%d questions, %d minutes.\n\n", quiz.Title, quiz.Description, len(quiz.Questions), quiz.TimeLimit)

	countdown, cancel := context.WithCancel(ctx)
	defer cancel()
	go session.RunCountdown(countdown)

	for session.State() == services.QuizInProgress {
		if err := views.Question(os.Stdout, session); err != nil {
			return err
		}
		line, err := prompt("[a-d] answer, n next, p previous, s submit, q quit: ")
		if err != nil {
			return err
		}
		if session.State() != services.QuizInProgress {
			fmt.Println("Time is up, your answers were submitted.")
			break
		}

		switch cmd := strings.ToLower(line); cmd {
		case "a", "b", "c", "d":
			if err := session.Select(strings.ToUpper(cmd)); err == nil {
				_ = session.Next()
			}
		case "n", "":
			_ = session.Next()
		case "p":
			_ = session.Previous()
		case "s":
			total := len(session.Answers())
			if left := total - session.AnsweredCount(); left > 0 {
				confirm, err := prompt(fmt.Sprintf("%d of %d questions unanswered. Submit anyway? [y/N] ", left, total))
				if err != nil || !strings.EqualFold(confirm, "y") {
					continue
				}
			}
			_ = session.Submit(ctx)
		case "q":
			fmt.Println("Quiz abandoned.")
			return nil
		default:
			fmt.Println("Unknown command.")
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if session.State() != services.QuizCompleted {
		return errors.New(session.Error())
	}
	result := session.Result()
	if err := views.Result(os.Stdout, result.QuizResult); err != nil {
		return err
	}
	fmt.Println("Run `eduguide recommendations` for colleges, exams and an action plan.")
	return nil
}

func (a *app) recommendations(ctx context.Context) error {
	resp, err := services.NewRecommendationService(a.store).Latest(ctx)
	if errors.Is(err, services.ErrNoRecommendations) {
		return views.NoRecommendations(os.Stdout)
	}
	if err != nil {
		return err
	}
	return views.Recommendations(os.Stdout, resp)
}

func (a *app) chat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	conversation := fs.Int64("conversation", 0, "continue an existing conversation")
	list := fs.Bool("list", false, "list conversations and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.requireUser()
	if err != nil {
		return err
	}

	session := services.NewChatSession(a.api, u.ID, a.log, services.WithGreeting(chatGreeting))
	if *list {
		convs, err := session.Conversations(ctx)
		if err != nil {
			return err
		}
		return views.Conversations(os.Stdout, convs)
	}
	if *conversation != 0 {
		if err := session.Open(ctx, *conversation); err != nil {
			fmt.Println(session.Error())
		}
	}
	if err := views.Chat(os.Stdout, session.Messages()); err != nil {
		return err
	}

	fmt.Println("Type a message. /new starts over, /history reloads, /quit exits.")
	for {
		line, err := prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			session.NewConversation()
			_ = views.Chat(os.Stdout, session.Messages())
			continue
		case "/history":
			if err := session.LoadHistory(ctx); err != nil && !errors.Is(err, services.ErrNoConversation) {
				fmt.Println(session.Error())
			}
			_ = views.Chat(os.Stdout, session.Messages())
			continue
		}

		_ = session.Send(ctx, line)
		msgs := session.Messages()
		if err := views.Chat(os.Stdout, msgs[len(msgs)-1:]); err != nil {
			return err
		}
	}
}

func (a *app) dashboard(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	fmt.Printf("Dashboard for %s\n", u.Name)
	return views.Dashboard(os.Stdout, services.NewDashboardService(a.api, a.log).Load(ctx, u.ID))
}

func (a *app) health(ctx context.Context) error {
	fmt.Printf("Backend: %s\n", a.api.BaseURL())
	msg, err := a.api.TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("auth endpoint unreachable: %w", err)
	}
	fmt.Println("auth:", msg)
	msg, err = a.api.ChatHealth(ctx)
	if err != nil {
		return fmt.Errorf("chatbot endpoint unreachable: %w", err)
	}
	fmt.Println("chatbot:", msg)
	return nil
}
