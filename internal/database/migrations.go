package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createClientsTable,
		createAdministrateursTable,
		createCategoriesServicesTable,
		createServicesTable,
		createServiceTranslationsTable,
		createReferralCodesTable,
		createReservationsTable,
		createReservationItemsTable,
		createReferralUsageTable,
		createProductCategoriesTable,
		createProductsTable,
		createStoreOrdersTable,
		createStoreOrderItemsTable,
		createMembershipsTable,
		createMembershipTranslationsTable,
		createJotformSubmissionsTable,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createClientsTable = `
CREATE TABLE IF NOT EXISTS clients (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(100) NOT NULL,
    prenom VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    telephone VARCHAR(30),
    mot_de_passe VARCHAR(255),
    email_verifie BOOLEAN NOT NULL DEFAULT FALSE,
    token_verification VARCHAR(64),
    date_naissance DATE NULL,
    adresse VARCHAR(255),
    langue_preferee VARCHAR(5) NOT NULL DEFAULT 'fr',
    actif BOOLEAN NOT NULL DEFAULT TRUE,
    date_creation TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    date_modification TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_clients_token (token_verification)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createAdministrateursTable = `
CREATE TABLE IF NOT EXISTS administrateurs (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    mot_de_passe VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'employe',
    permissions JSON NULL,
    actif BOOLEAN NOT NULL DEFAULT TRUE,
    date_creation TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (role IN ('super_admin', 'admin', 'employe'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createCategoriesServicesTable = `
CREATE TABLE IF NOT EXISTS categories_services (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(100) NOT NULL,
    description TEXT,
    couleur_theme VARCHAR(20),
    ordre_affichage INT NOT NULL DEFAULT 0,
    actif BOOLEAN NOT NULL DEFAULT TRUE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(150) NOT NULL,
    description TEXT,
    prix DECIMAL(10,2) NOT NULL,
    duree INT NOT NULL,
    categorie_id INT NULL,
    populaire BOOLEAN NOT NULL DEFAULT FALSE,
    actif BOOLEAN NOT NULL DEFAULT TRUE,
    date_creation TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (categorie_id) REFERENCES categories_services(id) ON DELETE SET NULL,
    CHECK (duree > 0),
    CHECK (prix >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createServiceTranslationsTable = `
CREATE TABLE IF NOT EXISTS services_translations (
    service_id INT NOT NULL,
    language_code VARCHAR(5) NOT NULL,
    nom VARCHAR(150),
    description TEXT,
    PRIMARY KEY (service_id, language_code),
    FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createReferralCodesTable = `
CREATE TABLE IF NOT EXISTS referral_codes (
    id INT AUTO_INCREMENT PRIMARY KEY,
    code VARCHAR(20) NOT NULL UNIQUE,
    owner_client_id INT NULL,
    discount_percentage DECIMAL(5,2) NOT NULL,
    max_uses INT NULL,
    current_uses INT NOT NULL DEFAULT 0,
    expires_at DATETIME NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (owner_client_id) REFERENCES clients(id) ON DELETE SET NULL,
    CHECK (discount_percentage > 0 AND discount_percentage <= 100)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// service_id is the legacy single-service column; multi-service bookings use reservation_items.
const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id INT AUTO_INCREMENT PRIMARY KEY,
    client_id INT NULL,
    service_id INT NULL,
    date_reservation DATE NOT NULL,
    heure_debut TIME NOT NULL,
    heure_fin TIME NOT NULL,
    statut VARCHAR(20) NOT NULL DEFAULT 'en_attente',
    prix_services DECIMAL(10,2) NOT NULL DEFAULT 0,
    reduction_pourcentage DECIMAL(5,2) NOT NULL DEFAULT 0,
    prix_final DECIMAL(10,2) NOT NULL DEFAULT 0,
    referral_code_id INT NULL,
    client_nom VARCHAR(100),
    client_prenom VARCHAR(100),
    client_email VARCHAR(255),
    client_telephone VARCHAR(30),
    notes TEXT,
    session_id VARCHAR(64),
    date_creation TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    date_modification TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE SET NULL,
    FOREIGN KEY (service_id) REFERENCES services(id),
    FOREIGN KEY (referral_code_id) REFERENCES referral_codes(id) ON DELETE SET NULL,
    INDEX idx_reservations_date (date_reservation, statut),
    INDEX idx_reservations_session (session_id),
    CHECK (statut IN ('en_attente', 'confirmee', 'annulee', 'terminee', 'no_show'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createReservationItemsTable = `
CREATE TABLE IF NOT EXISTS reservation_items (
    id INT AUTO_INCREMENT PRIMARY KEY,
    reservation_id INT NOT NULL,
    service_id INT NOT NULL,
    item_type VARCHAR(10) NOT NULL DEFAULT 'main',
    prix DECIMAL(10,2) NOT NULL,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE,
    FOREIGN KEY (service_id) REFERENCES services(id),
    UNIQUE KEY uq_reservation_service (reservation_id, service_id),
    CHECK (item_type IN ('main', 'addon'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createReferralUsageTable = `
CREATE TABLE IF NOT EXISTS referral_usage (
    id INT AUTO_INCREMENT PRIMARY KEY,
    referral_code_id INT NOT NULL,
    used_by_client_id INT NULL,
    reservation_id INT NULL,
    discount_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (referral_code_id) REFERENCES referral_codes(id) ON DELETE CASCADE,
    FOREIGN KEY (used_by_client_id) REFERENCES clients(id) ON DELETE SET NULL,
    FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createProductCategoriesTable = `
CREATE TABLE IF NOT EXISTS product_categories (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(100) NOT NULL,
    description TEXT,
    actif BOOLEAN NOT NULL DEFAULT TRUE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(150) NOT NULL,
    description TEXT,
    prix DECIMAL(10,2) NOT NULL,
    categorie_id INT NULL,
    image_url VARCHAR(500),
    is_preorder BOOLEAN NOT NULL DEFAULT TRUE,
    estimated_delivery_days INT NOT NULL DEFAULT 14,
    actif BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    FOREIGN KEY (categorie_id) REFERENCES product_categories(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createStoreOrdersTable = `
CREATE TABLE IF NOT EXISTS store_orders (
    id INT AUTO_INCREMENT PRIMARY KEY,
    numero_commande VARCHAR(40) NOT NULL UNIQUE,
    client_id INT NULL,
    client_nom VARCHAR(200) NOT NULL,
    client_email VARCHAR(255) NOT NULL,
    client_telephone VARCHAR(30),
    adresse_livraison VARCHAR(500),
    statut VARCHAR(20) NOT NULL DEFAULT 'pending',
    total DECIMAL(10,2) NOT NULL DEFAULT 0,
    date_livraison_estimee DATE NULL,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE SET NULL,
    CHECK (statut IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createStoreOrderItemsTable = `
CREATE TABLE IF NOT EXISTS store_order_items (
    id INT AUTO_INCREMENT PRIMARY KEY,
    order_id INT NOT NULL,
    product_id INT NOT NULL,
    quantite INT NOT NULL,
    prix_unitaire DECIMAL(10,2) NOT NULL,
    sous_total DECIMAL(10,2) NOT NULL,
    FOREIGN KEY (order_id) REFERENCES store_orders(id) ON DELETE CASCADE,
    FOREIGN KEY (product_id) REFERENCES products(id),
    CHECK (quantite > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createMembershipsTable = `
CREATE TABLE IF NOT EXISTS memberships (
    id INT AUTO_INCREMENT PRIMARY KEY,
    nom VARCHAR(100) NOT NULL,
    description TEXT,
    prix_mensuel DECIMAL(10,2) NOT NULL,
    prix_3_mois DECIMAL(10,2) NULL,
    services_par_mois INT NOT NULL DEFAULT 1,
    avantages TEXT,
    actif BOOLEAN NOT NULL DEFAULT TRUE,
    date_creation TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createMembershipTranslationsTable = `
CREATE TABLE IF NOT EXISTS memberships_translations (
    membership_id INT NOT NULL,
    language_code VARCHAR(5) NOT NULL,
    nom VARCHAR(100),
    description TEXT,
    avantages TEXT,
    PRIMARY KEY (membership_id, language_code),
    FOREIGN KEY (membership_id) REFERENCES memberships(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createJotformSubmissionsTable = `
CREATE TABLE IF NOT EXISTS jotform_submissions (
    id INT AUTO_INCREMENT PRIMARY KEY,
    submission_id CHAR(36) NOT NULL UNIQUE,
    form_id VARCHAR(40) NOT NULL,
    session_id VARCHAR(64),
    reservation_id INT NULL,
    answers JSON NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE SET NULL,
    INDEX idx_jotform_session (session_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
