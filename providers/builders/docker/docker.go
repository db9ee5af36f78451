package docker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	registrytypes "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/sirupsen/logrus"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/format"
	"github.com/madpaura/docker-webui/providers/builders"
)

var _ builders.Builder = new(DockerBuilder)

type DockerBuilder struct {
	l        *logrus.Logger
	version  string
	username string
	password string
	cli      *client.Client
}

// NewDockerBuilder connects to the engine from the environment and
// pings it once, so a missing or unreachable daemon surfaces at startup
// instead of on the first build. Credentials are only used for pushes
// and may be empty for anonymous registries.
func NewDockerBuilder(version, username, password string, l *logrus.Logger) (*DockerBuilder, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating engine client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("engine unreachable: %w", err)
	}

	return &DockerBuilder{
		l:        l,
		version:  version,
		username: username,
		password: password,
		cli:      cli,
	}, nil
}

func buildArgsPointers(args map[string]string) map[string]*string {
	converted := make(map[string]*string, len(args))
	for k, v := range args {
		v := v
		converted[k] = &v
	}
	return converted
}

func (b *DockerBuilder) Build(ctx context.Context, contextDir, dockerfile, tag string, args map[string]string) (*model.BuildResult, error) {
	//the engine needs the context as a tar stream, it never sees the
	//filesystem directly
	buildContext, err := archive.TarWithOptions(contextDir, &archive.TarOptions{
		NoLchown: true,
	})
	if err != nil {
		return nil, fmt.Errorf("preparing build context: %w", err)
	}
	defer buildContext.Close()

	result := &model.BuildResult{FullTag: tag, At: time.Now()}

	resp, err := b.cli.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Dockerfile: dockerfile,
		Tags:       []string{tag},
		BuildArgs:  buildArgsPointers(args),
		Labels: map[string]string{
			"org.docker-webui.version": b.version,
			"org.docker-webui.builtAt": time.Now().Format("02/01/2006 15:04:05"),
		},
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		if client.IsErrConnectionFailed(err) {
			return nil, fmt.Errorf("engine unreachable: %w", err)
		}
		// the daemon refused the build (bad dockerfile, bad options):
		// that is a failed build, not a broken engine
		b.l.Errorf("dockerBuilder.Build: daemon refused build of %s: %v", tag, err)
		result.RawLog = err.Error()
		result.Log = format.BuildLog(result.RawLog)
		return result, nil
	}
	defer resp.Body.Close()

	stream, err := renderStream(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading build stream: %w", err)
	}

	result.RawLog = stream.log
	result.Log = format.BuildLog(stream.log)
	result.ImageID = stream.imageID()

	if stream.errMsg != "" {
		b.l.Errorf("dockerBuilder.Build: build of %s failed: %s", tag, stream.errMsg)
		result.ImageID = ""
		return result, nil
	}

	result.Success = true
	b.l.Infof("dockerBuilder.Build: built %s as %s", tag, result.ImageID)
	return result, nil
}

func (b *DockerBuilder) Tag(ctx context.Context, source, target string) error {
	if err := b.cli.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("tagging %s as %s: %w", source, target, err)
	}
	return nil
}

// Push sends ref to its registry and returns the rendered push log.
// The registry part of ref (everything before the first slash) is used
// as the auth server address.
func (b *DockerBuilder) Push(ctx context.Context, ref string) (string, error) {
	server := ref
	if i := strings.Index(server, "/"); i >= 0 {
		server = server[:i]
	}

	authConfig := registrytypes.AuthConfig{
		Username:      b.username,
		Password:      b.password,
		ServerAddress: server,
	}
	authConfigBytes, _ := json.Marshal(authConfig)
	authConfigEncoded := base64.URLEncoding.EncodeToString(authConfigBytes)

	rd, err := b.cli.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: authConfigEncoded})
	if err != nil {
		return "", fmt.Errorf("pushing %s: %w", ref, err)
	}
	defer rd.Close()

	stream, err := renderStream(rd)
	if err != nil {
		return "", fmt.Errorf("reading push stream: %w", err)
	}
	if stream.errMsg != "" {
		return format.BuildLog(stream.log), fmt.Errorf("pushing %s: %s", ref, stream.errMsg)
	}

	b.l.Infof("dockerBuilder.Push: pushed %s", ref)
	return format.BuildLog(stream.log), nil
}

func (b *DockerBuilder) ListImages(ctx context.Context) ([]model.ImageInfo, error) {
	summaries, err := b.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	var images []model.ImageInfo
	for _, s := range summaries {
		id := strings.TrimPrefix(s.ID, "sha256:")
		if len(id) > 12 {
			id = id[:12]
		}
		for _, repoTag := range s.RepoTags {
			if repoTag == "<none>:<none>" {
				continue
			}
			repo, tag := splitRepoTag(repoTag)
			images = append(images, model.ImageInfo{
				ID:         id,
				Repository: repo,
				Tag:        tag,
				Size:       format.ImageSize(s.Size),
				Created:    format.ImageAge(time.Unix(s.Created, 0)),
			})
		}
	}
	return images, nil
}

func splitRepoTag(repoTag string) (string, string) {
	i := strings.LastIndex(repoTag, ":")
	if i < 0 || strings.Contains(repoTag[i:], "/") {
		return repoTag, ""
	}
	return repoTag[:i], repoTag[i+1:]
}
