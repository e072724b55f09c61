package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bachat-planner/internal/core/ai/service"
	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/infrastructure/config"
	"bachat-planner/internal/pkg/common"
)

var (
	prefsPath  string
	constraint string
	icsPath    string
)

// PrefsFile `bachat plan` 讀取的 YAML 偏好檔
type PrefsFile struct {
	wizard.PreferencesPatch `yaml:",inline"`
	Ingredients             []string `yaml:"ingredients"`
	ExcludedIngredients     []string `yaml:"excludedIngredients"`
}

// LoadPrefsFile 讀取並解析偏好檔
func LoadPrefsFile(path string) (*PrefsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	var pf PrefsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	return &pf, nil
}

// planCmd 從偏好檔生成計畫
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a meal plan from a preferences file",
	Long: `Walk the questionnaire with the values from --prefs, generate a plan
and print it as JSON followed by the grocery share text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, err := LoadPrefsFile(prefsPath)
		if err != nil {
			return err
		}
		opt, ok := mealplan.ParseOptimization(constraint)
		if !ok {
			return fmt.Errorf("unknown constraint %q", constraint)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if err := common.InitLogger(cfg.LogLevel); err != nil {
			return err
		}
		defer common.Sync()

		ctx := context.Background()
		provider, err := service.NewProvider(ctx, cfg)
		if err != nil {
			return err
		}
		aiService := service.NewService(provider, cfg.AI.Temperature)
		defer aiService.Close()

		loc, err := cfg.Calendar.Location()
		if err != nil {
			return fmt.Errorf("invalid calendar timezone: %w", err)
		}

		return RunPlan(ctx, PlanOptions{
			Planner:    mealplan.NewPlannerService(aiService),
			Prefs:      pf,
			Constraint: opt,
			ICSPath:    icsPath,
			Deriver:    schedule.NewDeriver(loc, time.Now),
			Out:        cmd.OutOrStdout(),
		})
	},
}

func init() {
	planCmd.Flags().StringVar(&prefsPath, "prefs", "prefs.yaml", "preferences YAML file")
	planCmd.Flags().StringVar(&constraint, "constraint", "", "optimization constraint (CHEAPEST, FASTEST, HIGH_PROTEIN, EXTRA_SPICY)")
	planCmd.Flags().StringVar(&icsPath, "ics", "", "write the calendar document to this file")
}

// PlanOptions 單次生成的輸入
type PlanOptions struct {
	Planner    wizard.Planner
	Prefs      *PrefsFile
	Constraint *mealplan.Optimization
	ICSPath    string
	Deriver    *schedule.Deriver
	Out        io.Writer
}

// RunPlan 依偏好檔填寫精靈、提交並輸出匯出結果
func RunPlan(ctx context.Context, opts PlanOptions) error {
	m := wizard.NewMachine(opts.Planner)
	if err := m.State.UpdatePreferences(opts.Prefs.PreferencesPatch); err != nil {
		return err
	}
	for _, tag := range opts.Prefs.Ingredients {
		if _, err := m.State.AddTag(wizard.ListIngredients, tag); err != nil {
			return err
		}
	}
	for _, tag := range opts.Prefs.ExcludedIngredients {
		if _, err := m.State.AddTag(wizard.ListExcluded, tag); err != nil {
			return err
		}
	}

	// 依序走到食材步驟
	for m.State.Step < wizard.StepIngredients {
		if err := m.State.Advance(); err != nil {
			return fmt.Errorf("preferences incomplete at %s step: %w", m.State.Step, err)
		}
	}

	if err := m.Submit(ctx, opts.Constraint); err != nil {
		if errors.Is(err, wizard.ErrInsufficientInput) {
			return fmt.Errorf("need at least %d ingredients, got %d", wizard.MinIngredients, m.State.Preferences.Ingredients.Len())
		}
		return err
	}

	plan := m.State.Plan
	out, err := common.ToJSON(plan)
	if err != nil {
		return err
	}
	status := m.State.Preferences.Feasibility()
	fmt.Fprintln(opts.Out, out)
	fmt.Fprintf(opts.Out, "\n%s (₹%.0f/day)\n\n", status.Label, m.State.Preferences.DailyBudget())
	fmt.Fprintln(opts.Out, schedule.ShareText(plan))

	// 輸出日曆檔
	if opts.ICSPath != "" {
		doc, err := opts.Deriver.CalendarDocument(plan, m.State.Preferences)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.ICSPath, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write calendar: %w", err)
		}
		fmt.Fprintf(opts.Out, "\nCalendar written to %s\n", opts.ICSPath)
	}
	return nil
}
