// Command analyze выполняет совмещение снимков или анализ сохранённого проекта без бота.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"shearzone/config"
	app "shearzone/internal/application"
	"shearzone/internal/container"
	"shearzone/internal/domain/entity"
	"shearzone/internal/infrastructure/imageio"
	"shearzone/internal/infrastructure/morphology"
	"shearzone/internal/infrastructure/report"
	"shearzone/internal/infrastructure/segmentation"
	"shearzone/internal/infrastructure/storage"
	"shearzone/internal/infrastructure/vision"
)

// Пакетный режим работает от имени одной локальной сессии пользователя -user.
const cliChatID = 0

type options struct {
	user    int64
	project string
	name    string
	mode    string
	channel string
	objects float64
	holes   float64
	out     string
	csv     string
	render  string

	reference   string
	moving      string
	algorithm   string
	maxFeatures int
	matches     string
}

func main() {
	var opts options
	flag.Int64Var(&opts.user, "user", 0, "owner of the projects (Telegram user ID)")
	flag.StringVar(&opts.project, "project", "", "project directory")
	flag.StringVar(&opts.name, "name", "", "project name to load (or to save the registered image under)")
	flag.StringVar(&opts.mode, "mode", "", "analysis mode: global|roi_union|roi_otsu|riss")
	flag.StringVar(&opts.channel, "channel", "", "channel: RGB|Gray|Red|Green|Blue")
	flag.Float64Var(&opts.objects, "objects", 0, "remove zones smaller than this area, mm²")
	flag.Float64Var(&opts.holes, "holes", 0, "fill holes smaller than this area, mm²")
	flag.StringVar(&opts.out, "out", "", "output image: mask for analysis, warped photo for registration")
	flag.StringVar(&opts.csv, "csv", "", "component table CSV")
	flag.StringVar(&opts.render, "render", "", "coloured component labels PNG")
	flag.StringVar(&opts.reference, "reference", "", "photo before shearing")
	flag.StringVar(&opts.moving, "moving", "", "photo after shearing")
	flag.StringVar(&opts.algorithm, "algorithm", "", "feature detector: SIFT|ORB")
	flag.IntVar(&opts.maxFeatures, "max-features", 0, "feature count limit")
	flag.StringVar(&opts.matches, "matches", "", "match visualisation PNG")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config: %v (defaults are used)", err)
	}
	if opts.project == "" {
		opts.project = cfg.ProjectDir
	}

	c, err := build(cfg, opts.project)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	ctx := context.Background()
	if opts.reference != "" || opts.moving != "" {
		err = register(ctx, c, opts)
	} else {
		err = analyze(ctx, c, opts)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func build(cfg *config.Config, projectDir string) (*container.Container, error) {
	images := imageio.NewProcessor()
	quantifier, err := morphology.NewQuantifier(morphology.DefaultConnectivity)
	if err != nil {
		return nil, err
	}
	projects, err := storage.NewFileProjectStore(projectDir, images)
	if err != nil {
		return nil, err
	}
	return container.New(container.Deps{
		Sessions:   storage.NewMemorySessionRepository(cfg.SessionDefaults()),
		Images:     images,
		Analyzer:   segmentation.NewCombiner(),
		Registrar:  vision.NewRegistrar(),
		Quantifier: quantifier,
		Reporter:   report.NewReporter(10),
		Projects:   projects,
	}), nil
}

func register(ctx context.Context, c *container.Container, opts options) error {
	if opts.reference == "" || opts.moving == "" || opts.out == "" {
		return fmt.Errorf("registration needs -reference, -moving and -out")
	}
	if opts.algorithm != "" {
		algo, err := entity.ParseAlgorithm(opts.algorithm)
		if err != nil {
			return err
		}
		if _, err := c.Sessions.SetAlgorithm(ctx, opts.user, cliChatID, algo, opts.maxFeatures); err != nil {
			return err
		}
	}

	reference, err := readImage(c, opts.reference)
	if err != nil {
		return err
	}
	moving, err := readImage(c, opts.moving)
	if err != nil {
		return err
	}

	if _, err := c.Registration.BeginRegistration(ctx, opts.user, cliChatID); err != nil {
		return err
	}
	if _, err := c.Registration.AcceptReferencePhoto(ctx, opts.user, cliChatID, reference); err != nil {
		return err
	}
	job, err := c.Registration.StartRegistration(ctx, opts.user, cliChatID, moving)
	if err != nil {
		return err
	}
	res, err := wait("registration", job)
	if err != nil {
		return err
	}
	log.Printf("Registered with %s: %d/%d inliers, mean residual %.2f px",
		res.Estimate.Model, res.Estimate.InlierCount, res.MatchCount, res.Estimate.MeanResidual)

	if err := writeImage(c, opts.out, res.Warped); err != nil {
		return err
	}
	if opts.matches != "" {
		if err := writeImage(c, opts.matches, res.Matches); err != nil {
			return err
		}
	}
	if opts.name != "" {
		if err := c.Projects.Save(ctx, opts.user, cliChatID, opts.name); err != nil {
			return err
		}
		log.Printf("Saved project %q", opts.name)
	}
	return nil
}

func analyze(ctx context.Context, c *container.Container, opts options) error {
	if opts.name == "" {
		return fmt.Errorf("analysis needs -name (or -reference and -moving for registration)")
	}
	if _, err := c.Projects.Load(ctx, opts.user, cliChatID, opts.name); err != nil {
		return err
	}
	if opts.channel != "" {
		channel, err := entity.ParseChannel(opts.channel)
		if err != nil {
			return err
		}
		if _, err := c.Sessions.SetChannel(ctx, opts.user, cliChatID, channel); err != nil {
			return err
		}
	}
	if opts.mode != "" {
		mode, err := entity.ParseMode(opts.mode)
		if err != nil {
			return err
		}
		if _, err := c.Sessions.SetMode(ctx, opts.user, cliChatID, mode); err != nil {
			return err
		}
	}

	job, err := c.Analysis.StartAnalysis(ctx, opts.user, cliChatID)
	if err != nil {
		return err
	}
	res, err := wait("analysis", job)
	if err != nil {
		return err
	}
	log.Printf("Analysis %s done, thresholds %v", res.Mode, res.Thresholds)

	if opts.objects > 0 {
		if _, err := c.Quantify.FilterObjects(ctx, opts.user, cliChatID, opts.objects); err != nil {
			return err
		}
	}
	if opts.holes > 0 {
		if _, err := c.Quantify.FillHoles(ctx, opts.user, cliChatID, opts.holes); err != nil {
			return err
		}
	}

	session, err := c.Sessions.Get(ctx, opts.user, cliChatID)
	if err != nil {
		return err
	}
	if opts.out != "" {
		if err := writeImage(c, opts.out, imageio.MaskImage(session.Project.Binary)); err != nil {
			return err
		}
	}

	out, err := c.Quantify.Table(ctx, opts.user, cliChatID)
	if err != nil {
		return err
	}
	fmt.Println(out.Report.Text)
	if opts.csv != "" {
		if err := os.WriteFile(opts.csv, out.Report.CSV, 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if opts.render != "" {
		if err := writeImage(c, opts.render, out.Rendered); err != nil {
			return err
		}
	}
	return nil
}

// wait печатает прогресс задачи в журнал и возвращает её итог.
func wait[T any](title string, job *app.Job[T]) (T, error) {
	for p := range job.Progress() {
		log.Printf("%s: %d%%", title, p)
	}
	return job.Wait()
}

func readImage(c *container.Container, path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, err := c.Images.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writeImage(c *container.Container, path string, img image.Image) error {
	data, err := c.Images.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}
