// Пакет для периодических задач сервиса постов (обновление статистики хранилища).
//
// Основные возможности:
//   - Регистрация задач по имени с расписанием cron или дескриптором (@every 5m).
//   - Проверка расписания до запуска.
//   - Запуск и остановка диспетчера с ожиданием выполняющихся задач.
package cronmanager

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
)

type Job struct {
	Func     func()
	Schedule string
	// RunOnStart выполняет задачу сразу при Start, не дожидаясь расписания
	RunOnStart bool
}

type JobRegistry map[string]Job

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type CronManager struct {
	dispatcher  *cron.Cron
	jobs        map[string]cron.EntryID
	mu          sync.Mutex
	jobRegistry JobRegistry
}

// NewCronManager создает менеджер для задач из реестра. Паника внутри задачи логируется и не останавливает диспетчер.
func NewCronManager(jobRegistry JobRegistry) *CronManager {
	dispatcher := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &CronManager{
		dispatcher:  dispatcher,
		jobs:        make(map[string]cron.EntryID),
		jobRegistry: jobRegistry,
	}
}

// ValidateSchedule проверяет расписание без добавления задачи.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// LoadJobs добавляет задачи реестра в расписание, заменяя ранее загруженные.
// Задачи с некорректным расписанием пропускаются, их имена возвращаются в ошибке.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, entryID := range cm.jobs {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}

	var failed []string
	for name, job := range cm.jobRegistry {
		if err := cm.addJob(name, job); err != nil {
			slog.Error("Error adding job", "name", name, "err", err)
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return fmt.Errorf("failed to schedule jobs: %v", failed)
	}
	return nil
}

func (cm *CronManager) addJob(name string, job Job) error {
	if job.Func == nil {
		return fmt.Errorf("no job function registered for name: %s", name)
	}

	id, err := cm.dispatcher.AddFunc(job.Schedule, job.Func)
	if err != nil {
		return fmt.Errorf("failed to add job '%s': %w", name, err)
	}
	cm.jobs[name] = id
	return nil
}

func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Jobs - имена задач в расписании.
func (cm *CronManager) Jobs() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	res := make([]string, 0, len(cm.jobs))
	for name := range cm.jobs {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (cm *CronManager) Start() {
	cm.mu.Lock()
	for name := range cm.jobs {
		if job := cm.jobRegistry[name]; job.RunOnStart {
			go job.Func()
		}
	}
	cm.mu.Unlock()

	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и ждет завершения выполняющихся задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
