package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBackupConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupConfig(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath != "" {
			t.Errorf("expected empty backup path for non-existent config, got %s", backupPath)
		}
	})

	t.Run("backup existing config", func(t *testing.T) {
		testContent := "version: 1\nlogging:\n  level: warn\n"
		if err := os.WriteFile(configPath, []byte(testContent), 0o644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		backupPath, err := BackupConfig(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath == "" {
			t.Fatal("expected non-empty backup path")
		}

		backupContent, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(backupContent) != testContent {
			t.Errorf("backup content mismatch:\ngot: %s\nwant: %s", backupContent, testContent)
		}
	})
}

func TestListBackups(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	names := []string{
		"config.yaml.bak.20260101-100000.000",
		"config.yaml.bak.20260301-100000.000",
		"config.yaml.bak.20260201-100000.000",
		"other.yaml.bak.20260401-100000.000",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("version: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := ListBackups(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d: %v", len(backups), backups)
	}
	if filepath.Base(backups[0]) != "config.yaml.bak.20260301-100000.000" {
		t.Errorf("expected newest first, got %s", backups[0])
	}

	missing, err := ListBackups(filepath.Join(tmpDir, "nope", "config.yaml"))
	if err != nil || missing != nil {
		t.Errorf("expected no backups and no error for missing dir, got %v, %v", missing, err)
	}
}

func TestBackupConfig_Prunes(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	for _, stamp := range []string{"20200101-000000.000", "20200102-000000.000", "20200103-000000.000", "20200104-000000.000"} {
		if err := os.WriteFile(configPath+BackupSuffix+"."+stamp, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := BackupConfig(configPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backups, _ := ListBackups(configPath)
	if len(backups) != MaxBackups {
		t.Errorf("expected %d backups after pruning, got %d", MaxBackups, len(backups))
	}
	if _, err := os.Stat(configPath + BackupSuffix + ".20200101-000000.000"); !os.IsNotExist(err) {
		t.Error("expected the oldest backup to be pruned")
	}
}

func TestRestoreConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	backupPath := configPath + BackupSuffix + ".20260101-100000.000"

	if err := os.WriteFile(configPath, []byte("current"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(backupPath, []byte("restored"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RestoreConfig(configPath, backupPath); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	content, _ := os.ReadFile(configPath)
	if string(content) != "restored" {
		t.Errorf("expected restored content, got %q", content)
	}

	backups, _ := ListBackups(configPath)
	if len(backups) != 2 {
		t.Errorf("expected the current config to be backed up before restore, got %v", backups)
	}

	if err := RestoreConfig(configPath, filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing backup")
	}
}
