package telegram

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "shearzone/internal/application"
	"shearzone/internal/container"
	"shearzone/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для оценки зон разрушения на снимках образцов после испытания на сдвиг.

📸 Отправьте снимок поверхности трещины (фото или файл), и он станет рабочим проектом.

📋 Команды:
/register — совместить снимки до и после сдвига
/analyze — найти зоны разрушения
/table — таблица зон и CSV
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте снимок или выполните /register
2️⃣ Задайте области: /crop, /roi, /scale
3️⃣ Запустите /analyze
4️⃣ Уберите мелочь: /objects и /holes
5️⃣ Получите таблицу: /table

📐 Точки задаются как x,y через пробел:
/crop 10,10 500,10 500,400 10,400
/roi 40,40 120,40 120,90
/scale 0,0 300,0 50 — отрезок и его длина в мм

⚙️ Настройки:
/mode global|roi_union|roi_otsu|riss
/channel RGB|Gray|Red|Green|Blue
/algorithm SIFT|ORB [число точек]
/median радиус
/clearroi — удалить все ROI

💾 Проекты:
/save имя, /load имя, /load — список`

	msgAwaitingReference = "📸 Отправьте снимок образца ДО сдвига."
	msgAwaitingDamage    = "📸 Теперь отправьте снимок ПОСЛЕ сдвига."
	msgCancelled         = "❌ Операция отменена."
	msgSendPhoto         = "📸 Отправьте снимок образца или команду. /help — справка."
	msgUnknownCommand    = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing        = "⏳ Уже идёт обработка, дождитесь результата."
	msgProjectLoaded     = "✅ Снимок загружен: %d×%d. Задайте области и запустите /analyze."
	msgProcessingError   = "⚠️ Не удалось обработать запрос. Попробуйте ещё раз."
	msgDownloadError     = "⚠️ Не удалось скачать файл."
)

// Bot представляет Telegram-бота
type Bot struct {
	api            *tgbotapi.BotAPI
	c              *container.Container
	previewMaxSide int
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, previewMaxSide int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:            api,
		c:              c,
		previewMaxSide: previewMaxSide,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx := context.Background()

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}

		b.handleMessage(ctx, update.Message)
	}

	return nil
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.c.Sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, session, fileID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// imageFileID выбирает фото максимального разрешения или документ-изображение.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	uid, cid := msg.From.ID, msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.c.Sessions.SetState(ctx, uid, cid, entity.StateMainMenu)
		b.sendMessage(cid, msgStart)

	case "help":
		b.sendMessage(cid, msgHelp)

	case "cancel":
		if session.State == entity.StateProcessing {
			b.sendMessage(cid, msgProcessing)
			return
		}
		_, err = b.c.Sessions.Cancel(ctx, uid, cid)
		if err == nil {
			b.sendMessage(cid, msgCancelled)
		}

	case "register":
		_, err = b.c.Registration.BeginRegistration(ctx, uid, cid)
		if err == nil {
			b.sendMessage(cid, msgAwaitingReference)
		}

	case "algorithm":
		err = b.cmdAlgorithm(ctx, msg, session, args)
	case "channel":
		err = b.cmdChannel(ctx, msg, session, args)
	case "mode":
		err = b.cmdMode(ctx, msg, session, args)
	case "median":
		err = b.cmdMedian(ctx, msg, args)
	case "crop":
		err = b.cmdCrop(ctx, msg, args)
	case "roi":
		err = b.cmdROI(ctx, msg, args)
	case "clearroi":
		if _, err = b.c.Sessions.ClearROIs(ctx, uid, cid); err == nil {
			b.sendMessage(cid, "🧹 Все ROI удалены.")
		}
	case "scale":
		err = b.cmdScale(ctx, msg, args)
	case "analyze":
		err = b.cmdAnalyze(ctx, msg)
	case "objects":
		err = b.cmdFilter(ctx, msg, args, b.c.Quantify.FilterObjects, "🧽 Мелкие зоны удалены")
	case "holes":
		err = b.cmdFilter(ctx, msg, args, b.c.Quantify.FillHoles, "🩹 Мелкие дыры заполнены")
	case "table":
		err = b.cmdTable(ctx, msg)
	case "save":
		err = b.cmdSave(ctx, msg, args)
	case "load":
		err = b.cmdLoad(ctx, msg, args)

	default:
		b.sendMessage(cid, msgUnknownCommand)
	}

	if err != nil {
		log.Printf("Command /%s from %d: %v", msg.Command(), uid, err)
		b.sendMessage(cid, userError(err))
	}
}

// handleImage обрабатывает входящий снимок в зависимости от состояния диалога
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, session *entity.Session, fileID string) {
	cid := msg.Chat.ID
	if session.State == entity.StateProcessing {
		b.sendMessage(cid, msgProcessing)
		return
	}

	data, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading image: %v", err)
		b.sendMessage(cid, msgDownloadError)
		return
	}
	log.Printf("Received image: %s, state %s", humanize.Bytes(uint64(len(data))), session.State)

	img, err := b.c.Images.Decode(data)
	if err != nil {
		log.Printf("Error decoding image: %v", err)
		b.sendMessage(cid, msgProcessingError)
		return
	}

	switch session.State {
	case entity.StateAwaitingReferencePhoto:
		_, err = b.c.Registration.AcceptReferencePhoto(ctx, msg.From.ID, cid, img)
		if err == nil {
			b.sendMessage(cid, msgAwaitingDamage)
		}
	case entity.StateAwaitingDamagePhoto:
		err = b.startRegistration(ctx, msg, img)
	default:
		_, err = b.c.Sessions.SetImage(ctx, msg.From.ID, cid, img)
		if err == nil {
			bounds := img.Bounds()
			b.sendMessage(cid, fmt.Sprintf(msgProjectLoaded, bounds.Dx(), bounds.Dy()))
		}
	}
	if err != nil {
		log.Printf("Error handling image: %v", err)
		b.sendMessage(cid, userError(err))
	}
}

func (b *Bot) startRegistration(ctx context.Context, msg *tgbotapi.Message, moving image.Image) error {
	job, err := b.c.Registration.StartRegistration(ctx, msg.From.ID, msg.Chat.ID, moving)
	if err != nil {
		return err
	}
	go follow(b, msg.Chat.ID, "🔗 Совмещение снимков", job, func(res *entity.RegistrationResult, err error) {
		if err != nil {
			log.Printf("Registration for %d failed: %v", msg.From.ID, err)
			text := userError(err)
			if errors.Is(err, entity.ErrInsufficientMatches) || errors.Is(err, entity.ErrTransformFitFailed) {
				text += "\n" + msgAwaitingDamage
			}
			b.sendMessage(msg.Chat.ID, text)
			return
		}
		est := res.Estimate
		b.sendPhoto(msg.Chat.ID, res.Matches, fmt.Sprintf("🟢 инлаеры %d из %d", est.InlierCount, res.MatchCount))
		b.sendPhoto(msg.Chat.ID, res.Warped, fmt.Sprintf("✅ Снимки совмещены (%s, ошибка %.2f px). Это новый рабочий проект.", est.Model, est.MeanResidual))
	})
	return nil
}

func (b *Bot) cmdAlgorithm(ctx context.Context, msg *tgbotapi.Message, session *entity.Session, args string) error {
	if args == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🔍 Детектор: %s, точек: %d", session.Params.Algorithm, session.Params.MaxFeatures))
		return nil
	}
	algo, maxFeatures, err := parseAlgorithm(args)
	if err != nil {
		return err
	}
	s, err := b.c.Sessions.SetAlgorithm(ctx, msg.From.ID, msg.Chat.ID, algo, maxFeatures)
	if err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Детектор: %s, точек: %d", s.Params.Algorithm, s.Params.MaxFeatures))
	return nil
}

func (b *Bot) cmdChannel(ctx context.Context, msg *tgbotapi.Message, session *entity.Session, args string) error {
	if args == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🎨 Канал: %s. Доступны: %s", session.Channel, joinChannels()))
		return nil
	}
	channel, err := entity.ParseChannel(args)
	if err != nil {
		return err
	}
	if _, err := b.c.Sessions.SetChannel(ctx, msg.From.ID, msg.Chat.ID, channel); err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Канал: %s", channel))
	return nil
}

func (b *Bot) cmdMode(ctx context.Context, msg *tgbotapi.Message, session *entity.Session, args string) error {
	if args == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🧭 Режим: %s. Доступны: %s", session.Mode, joinModes()))
		return nil
	}
	mode, err := entity.ParseMode(args)
	if err != nil {
		return err
	}
	if _, err := b.c.Sessions.SetMode(ctx, msg.From.ID, msg.Chat.ID, mode); err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Режим: %s", mode))
	return nil
}

func (b *Bot) cmdMedian(ctx context.Context, msg *tgbotapi.Message, args string) error {
	radius, err := parsePositive(args)
	if err != nil {
		return err
	}
	s, err := b.c.Sessions.ApplyMedian(ctx, msg.From.ID, msg.Chat.ID, radius)
	if err != nil {
		return err
	}
	b.sendPhoto(msg.Chat.ID, s.Project.Origin, fmt.Sprintf("✅ Медианный фильтр, радиус %.1f px", radius))
	return nil
}

func (b *Bot) cmdCrop(ctx context.Context, msg *tgbotapi.Message, args string) error {
	crop, err := parsePolygon(args)
	if err != nil {
		return err
	}
	if _, err := b.c.Sessions.SetCrop(ctx, msg.From.ID, msg.Chat.ID, crop); err != nil {
		return err
	}
	if len(crop) == 0 {
		b.sendMessage(msg.Chat.ID, "✂️ Обрезка сброшена: анализируется весь кадр.")
		return nil
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✂️ Обрезка: %d точек, площадь %.0f px²", len(crop), crop.Area()))
	return nil
}

func (b *Bot) cmdROI(ctx context.Context, msg *tgbotapi.Message, args string) error {
	roi, err := parsePolygon(args)
	if err != nil {
		return err
	}
	if len(roi) == 0 {
		return entity.ErrInvalidPolygon
	}
	s, err := b.c.Sessions.AddROI(ctx, msg.From.ID, msg.Chat.ID, roi)
	if err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("➕ ROI #%d добавлена", len(s.Project.ROIs)))
	return nil
}

func (b *Bot) cmdScale(ctx context.Context, msg *tgbotapi.Message, args string) error {
	p1, p2, length, err := parseScale(args)
	if err != nil {
		return err
	}
	s, err := b.c.Sessions.SetScale(ctx, msg.From.ID, msg.Chat.ID, p1, p2, length)
	if err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("📏 Масштаб: %.4f мм/px", float64(*s.Project.Scale)))
	return nil
}

func (b *Bot) cmdAnalyze(ctx context.Context, msg *tgbotapi.Message) error {
	uid, cid := msg.From.ID, msg.Chat.ID
	job, err := b.c.Analysis.StartAnalysis(ctx, uid, cid)
	if err != nil {
		return err
	}
	go follow(b, cid, "🔬 Анализ", job, func(res *entity.AnalysisResult, err error) {
		if err != nil {
			log.Printf("Analysis for %d failed: %v", uid, err)
			b.sendMessage(cid, userError(err))
			return
		}
		session, err := b.c.Sessions.Get(ctx, uid, cid)
		if err != nil || session.Project == nil {
			b.sendMessage(cid, msgProcessingError)
			return
		}
		rendered := b.c.Images.RenderComponents(res.Binary, session.Project.Crop)
		b.sendPhoto(cid, rendered, fmt.Sprintf("✅ Анализ завершён (%s). %s\nДальше: /objects, /holes, /table", res.Mode, formatThresholds(res.Thresholds)))
	})
	return nil
}

type maskFilter func(ctx context.Context, userID, chatID int64, minArea float64) (*entity.Mask, error)

func (b *Bot) cmdFilter(ctx context.Context, msg *tgbotapi.Message, args string, filter maskFilter, done string) error {
	minArea, err := parsePositive(args)
	if err != nil {
		return err
	}
	bw, err := filter(ctx, msg.From.ID, msg.Chat.ID, minArea)
	if err != nil {
		return err
	}
	session, err := b.c.Sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		return err
	}
	b.sendPhoto(msg.Chat.ID, b.c.Images.RenderComponents(bw, session.Project.Crop), fmt.Sprintf("%s (< %.2f мм²)", done, minArea))
	return nil
}

func (b *Bot) cmdTable(ctx context.Context, msg *tgbotapi.Message) error {
	out, err := b.c.Quantify.Table(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		return err
	}
	b.sendPhoto(msg.Chat.ID, out.Rendered, "")
	b.sendMessage(msg.Chat.ID, out.Report.Text)
	b.sendDocument(msg.Chat.ID, "shear_zones.csv", out.Report.CSV)
	return nil
}

func (b *Bot) cmdSave(ctx context.Context, msg *tgbotapi.Message, name string) error {
	if name == "" {
		return fmt.Errorf("save: %w", errNameRequired)
	}
	if err := b.c.Projects.Save(ctx, msg.From.ID, msg.Chat.ID, name); err != nil {
		return err
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("💾 Проект «%s» сохранён.", name))
	return nil
}

func (b *Bot) cmdLoad(ctx context.Context, msg *tgbotapi.Message, name string) error {
	if name == "" {
		names, err := b.c.Projects.List(ctx, msg.From.ID)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			b.sendMessage(msg.Chat.ID, "📂 Сохранённых проектов нет.")
			return nil
		}
		b.sendMessage(msg.Chat.ID, "📂 Проекты:\n"+strings.Join(names, "\n"))
		return nil
	}
	p, err := b.c.Projects.Load(ctx, msg.From.ID, msg.Chat.ID, name)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("📂 Проект «%s»: %d ROI", name, len(p.ROIs))
	if p.Binary != nil {
		caption += ", есть результат анализа"
	}
	b.sendPhoto(msg.Chat.ID, p.Origin, caption)
	return nil
}

// follow показывает прогресс задачи, редактируя одно сообщение, и передаёт итог в done.
func follow[T any](b *Bot, chatID int64, title string, job *app.Job[T], done func(T, error)) {
	log.Printf("Job %s started: %s", job.ID(), title)
	status, err := b.api.Send(tgbotapi.NewMessage(chatID, progressText(title, 0)))
	if err != nil {
		log.Printf("Error sending status: %v", err)
	}
	shown := 0
	for p := range job.Progress() {
		if err != nil || p < shown+progressStep && p < 100 {
			continue
		}
		shown = p
		edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, progressText(title, p))
		if _, editErr := b.api.Send(edit); editErr != nil {
			log.Printf("Error editing status: %v", editErr)
		}
	}
	value, jobErr := job.Wait()
	log.Printf("Job %s finished, err: %v", job.ID(), jobErr)
	done(value, jobErr)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendPhoto отправляет уменьшенную копию снимка в JPEG
func (b *Bot) sendPhoto(chatID int64, img image.Image, caption string) {
	if img == nil {
		return
	}
	data, err := b.c.Images.EncodeJPEG(b.c.Images.Preview(img, b.previewMaxSide))
	if err != nil {
		log.Printf("Error encoding photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "image.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending document: %v", err)
	}
}
