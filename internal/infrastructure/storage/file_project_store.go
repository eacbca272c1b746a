package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
	"shearzone/internal/infrastructure/imageio"
)

const projectExt = ".json"

// projectDocument формат файла проекта; растры хранятся как PNG.
type projectDocument struct {
	Origin  []byte         `json:"origin"`
	Crop    [][2]float64   `json:"crop"`
	Channel string         `json:"channel"`
	ROIs    [][][2]float64 `json:"rois"`
	Scale   *float64       `json:"scale"`
	Binary  []byte         `json:"binary,omitempty"`
}

// FileProjectStore хранит проекты в каталоге, по одному JSON-файлу на проект.
// У каждого пользователя свой подкаталог: dir/<userID>/<name>.json.
type FileProjectStore struct {
	dir    string
	images port.ImageProcessor
}

// NewFileProjectStore создаёт каталог проектов, если его нет.
func NewFileProjectStore(dir string, images port.ImageProcessor) (*FileProjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileProjectStore{dir: dir, images: images}, nil
}

// SanitizeName оставляет в имени проекта только буквы, цифры, '-', '_' и '.'.
func SanitizeName(name string) (string, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "", fmt.Errorf("project name %q is empty after sanitizing", name)
	}
	return clean, nil
}

func (s *FileProjectStore) userDir(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10))
}

func (s *FileProjectStore) path(userID int64, name string) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.userDir(userID), clean+projectExt), nil
}

func (s *FileProjectStore) Save(ctx context.Context, userID int64, name string, project *entity.Project) error {
	_ = ctx
	if project == nil || project.Origin == nil {
		return entity.ErrNoImage
	}
	path, err := s.path(userID, name)
	if err != nil {
		return err
	}
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	origin, err := s.images.EncodePNG(project.Origin)
	if err != nil {
		return err
	}
	doc := projectDocument{
		Origin:  origin,
		Crop:    project.Crop.Pairs(),
		Channel: string(project.Channel),
	}
	for _, roi := range project.ROIs {
		doc.ROIs = append(doc.ROIs, roi.Pairs())
	}
	if project.Scale != nil {
		v := float64(*project.Scale)
		doc.Scale = &v
	}
	if project.Binary != nil {
		if doc.Binary, err = s.images.EncodePNG(imageio.MaskImage(project.Binary)); err != nil {
			return err
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".project-*")
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *FileProjectStore) Load(ctx context.Context, userID int64, name string) (*entity.Project, error) {
	_ = ctx
	path, err := s.path(userID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, entity.ErrProjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	var doc projectDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", name, err)
	}

	origin, err := s.images.Decode(doc.Origin)
	if err != nil {
		return nil, fmt.Errorf("project %s origin: %w", name, err)
	}
	channel := entity.ChannelGray
	if doc.Channel != "" {
		if channel, err = entity.ParseChannel(doc.Channel); err != nil {
			return nil, err
		}
	}

	project := entity.NewProject(origin, channel)
	project.Crop = entity.PolygonFromPairs(doc.Crop)
	for _, roi := range doc.ROIs {
		project.ROIs = append(project.ROIs, entity.PolygonFromPairs(roi))
	}
	if doc.Scale != nil {
		sc := entity.Scale(*doc.Scale)
		project.Scale = &sc
	}
	if len(doc.Binary) > 0 {
		img, err := s.images.Decode(doc.Binary)
		if err != nil {
			return nil, fmt.Errorf("project %s binary: %w", name, err)
		}
		project.Binary = imageio.MaskFromImage(img)
	}
	return project, nil
}

// List возвращает имена проектов пользователя по алфавиту.
func (s *FileProjectStore) List(ctx context.Context, userID int64) ([]string, error) {
	_ = ctx
	entries, err := os.ReadDir(s.userDir(userID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), projectExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), projectExt))
	}
	sort.Strings(names)
	return names, nil
}

var _ port.ProjectStore = (*FileProjectStore)(nil)
